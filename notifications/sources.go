package notifications

import (
	"context"
	"time"

	"github.com/ucond/ucond_backend/middlewares"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
)

// ModelDebtFinder reads the debts to remind from the database.
type ModelDebtFinder struct{}

func (ModelDebtFinder) FindDebtsDue(ctx context.Context, from, to time.Time) ([]Debt, error) {
	deudas, err := models.FindDeudasToNotify(ctx, from, to)
	if err != nil {
		return nil, err
	}
	debts := make([]Debt, 0, len(deudas))
	for _, d := range deudas {
		debt := Debt{ID: d.ID, Monto: d.MontoUsuario}
		if d.Gasto != nil {
			debt.Concepto = d.Gasto.Concepto
			debt.FechaLimite = d.Gasto.FechaLimite
			if d.Gasto.Condominio != nil {
				debt.Condominio = d.Gasto.Condominio.Nombre
			}
		}
		if d.Vivienda != nil {
			debt.Vivienda = d.Vivienda.Nombre
			debt.CedulaPropietario = d.Vivienda.CedulaPropietario
		}
		debts = append(debts, debt)
	}
	return debts, nil
}

// LoaderOwnerDirectory resolves owners through the batched user-by-cédula loader.
type LoaderOwnerDirectory struct{}

func (LoaderOwnerDirectory) OwnersByCedula(ctx context.Context, cedulas []string) (map[string]Owner, error) {
	owners := make(map[string]Owner, len(cedulas))
	if len(cedulas) == 0 {
		return owners, nil
	}
	users, errs := middlewares.GetUsersByCedula(ctx, cedulas)
	if err := middlewares.FirstError(errs); err != nil {
		return nil, err
	}
	for _, u := range users {
		if u == nil {
			continue
		}
		owners[u.Cedula] = Owner{Correo: u.Correo, Nombre: u.Nombre, Apellido: u.Apellido}
	}
	return owners, nil
}

const (
	SweepLockKey = "lock:notificaciones"
	SweepLockTTL = 10 * time.Minute
)

// NewDefaultSweeper wires the sweep to the database, the user loaders and the ACS
// mailer configured in the environment.
func NewDefaultSweeper() (*Sweeper, error) {
	mailer, err := NewACSMailerFromEnv()
	if err != nil {
		return nil, err
	}
	return NewSweeper(ModelDebtFinder{}, LoaderOwnerDirectory{}, mailer), nil
}

// RunExclusive runs s while holding the sweep lock, so two triggers never remind the
// same owners twice. The lock is refreshed for as long as the run lasts. It returns
// utils.ErrLockNotObtained when another sweep is running and wraps utils.ErrLockLost
// when the lock could not be kept.
func RunExclusive(ctx context.Context, s *Sweeper) (*Report, error) {
	var report *Report
	err := utils.WithLock(ctx, SweepLockKey, SweepLockTTL, func(ctx context.Context) error {
		var runErr error
		report, runErr = s.Run(ctx)
		return runErr
	})
	return report, err
}
