package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/notifications"
	mock_notifications "github.com/ucond/ucond_backend/notifications/mocks"
)

func newSweeper(t *testing.T, ctrl *gomock.Controller) (*notifications.Sweeper, *mock_notifications.MockDebtFinder, *mock_notifications.MockOwnerDirectory, *mock_notifications.MockMailer) {
	t.Helper()
	debts := mock_notifications.NewMockDebtFinder(ctrl)
	owners := mock_notifications.NewMockOwnerDirectory(ctrl)
	mailer := mock_notifications.NewMockMailer(ctrl)
	caracas, err := time.LoadLocation("America/Caracas")
	require.NoError(t, err)
	sweeper := notifications.NewSweeper(debts, owners, mailer)
	sweeper.Location = caracas
	// 11:00 in Caracas
	sweeper.Now = func() time.Time { return time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC) }
	return sweeper, debts, owners, mailer
}

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestSweepWithoutDebtsSendsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	sweeper, debts, _, _ := newSweeper(t, ctrl)

	debts.EXPECT().FindDebtsDue(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, from, to time.Time) ([]notifications.Debt, error) {
			assert.True(t, from.Equal(day(13)), "from %s", from)
			assert.True(t, to.Equal(day(17).Add(-time.Second)), "to %s", to)
			return nil, nil
		})

	report, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Found)
	assert.Equal(t, 0, report.Sent)
}

func TestSweepIsolatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	sweeper, debts, owners, mailer := newSweeper(t, ctrl)

	debts.EXPECT().FindDebtsDue(gomock.Any(), gomock.Any(), gomock.Any()).Return([]notifications.Debt{
		{ID: 1, Concepto: "Agua", FechaLimite: day(15), Condominio: "El Parque", Vivienda: "Apto 1", CedulaPropietario: "V1"},
		{ID: 2, Concepto: "Agua", FechaLimite: day(15), Condominio: "El Parque", Vivienda: "Apto 2", CedulaPropietario: "V2"},
		{ID: 3, Concepto: "Luz", FechaLimite: day(13), Condominio: "El Parque", Vivienda: "Apto 1", CedulaPropietario: "V1"},
		{ID: 4, Concepto: "Gas", FechaLimite: day(16), Condominio: "El Parque", Vivienda: "Apto 3", CedulaPropietario: "V3"},
	}, nil)
	owners.EXPECT().OwnersByCedula(gomock.Any(), []string{"V1", "V2", "V3"}).Return(map[string]notifications.Owner{
		"V1": {Correo: "uno@ucond.test", Nombre: "Ana", Apellido: "Uno"},
		"V3": {Correo: "tres@ucond.test", Nombre: "Luis", Apellido: "Tres"},
	}, nil)

	var subjects []string
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, email notifications.Email) error {
			subjects = append(subjects, email.Subject)
			if email.To == "tres@ucond.test" {
				return errors.New("mailbox unavailable")
			}
			return nil
		})

	report, err := sweeper.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deuda 4")
	assert.Equal(t, 4, report.Found)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 4, report.Failures[0].DebtID)
	assert.Equal(t, []string{
		notifications.SubjectDueToday,
		notifications.SubjectOverdue,
		notifications.SubjectUpcoming,
	}, subjects)
}

func TestSweepStopsWhenFinderFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	sweeper, debts, _, _ := newSweeper(t, ctrl)
	debts.EXPECT().FindDebtsDue(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	report, err := sweeper.Run(context.Background())
	assert.Nil(t, report)
	assert.EqualError(t, err, "db down")
}

func TestComposeEmail(t *testing.T) {
	owner := notifications.Owner{Correo: "a@ucond.test", Nombre: "Ana", Apellido: "Pérez"}
	debt := notifications.Debt{Concepto: "Agua", Condominio: "El Parque", Vivienda: "Apto 1"}

	debt.FechaLimite = day(17)
	email := notifications.ComposeEmail(debt, owner, day(15))
	assert.Equal(t, notifications.SubjectUpcoming, email.Subject)
	assert.Equal(t, "a@ucond.test", email.To)
	assert.Equal(t, "Ana Pérez", email.ToName)
	assert.Contains(t, email.PlainText, "la fecha límite es el 17/10/2026")

	debt.FechaLimite = day(15)
	email = notifications.ComposeEmail(debt, owner, day(15))
	assert.Equal(t, notifications.SubjectDueToday, email.Subject)
	assert.Contains(t, email.PlainText, "Hoy es la fecha límite de pago para su deuda de concepto Agua en el condominio El Parque, para su vivienda Apto 1")

	debt.FechaLimite = day(14)
	email = notifications.ComposeEmail(debt, owner, day(15))
	assert.Equal(t, notifications.SubjectOverdue, email.Subject)
}

func TestNextRun(t *testing.T) {
	caracas, err := time.LoadLocation("America/Caracas")
	require.NoError(t, err)

	// 07:00 in Caracas
	now := time.Date(2026, 10, 15, 11, 0, 0, 0, time.UTC)
	assert.True(t, notifications.NextRun(now, 8, caracas).Equal(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, notifications.NextRun(now, 7, caracas).Equal(time.Date(2026, 10, 16, 11, 0, 0, 0, time.UTC)))
}
