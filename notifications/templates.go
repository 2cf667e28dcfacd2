package notifications

import (
	"fmt"
	"time"
)

const (
	SubjectDueToday = "Fecha límite de pago"
	SubjectUpcoming = "Recordatorio de pago próximo"
	SubjectOverdue  = "Fecha límite de pago superada"
)

// Email is one plain-text message to a single recipient.
type Email struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
}

// calendarDay keeps the date of t as seen in loc, at UTC midnight.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComposeEmail picks the template by comparing the due date of the debt with today.
// Due dates are calendar dates stored at UTC midnight.
func ComposeEmail(debt Debt, owner Owner, today time.Time) Email {
	due := calendarDay(debt.FechaLimite, time.UTC)
	email := Email{
		To:     owner.Correo,
		ToName: owner.Nombre + " " + owner.Apellido,
	}
	switch {
	case due.Equal(today):
		email.Subject = SubjectDueToday
		email.PlainText = fmt.Sprintf(
			"Hoy es la fecha límite de pago para su deuda de concepto %s en el condominio %s, para su vivienda %s. Recuerde mantenerse al día con sus pagos",
			debt.Concepto, debt.Condominio, debt.Vivienda)
	case due.After(today):
		email.Subject = SubjectUpcoming
		email.PlainText = fmt.Sprintf(
			"Se aproxima la fecha límite de pago para su deuda de concepto %s en el condominio %s, para su vivienda %s. Recuerde mantenerse al día con sus pagos, la fecha límite es el %s",
			debt.Concepto, debt.Condominio, debt.Vivienda, due.Format("02/01/2006"))
	default:
		email.Subject = SubjectOverdue
		email.PlainText = fmt.Sprintf(
			"Se superó la fecha límite de pago para su deuda de concepto %s en el condominio %s, para su vivienda %s. Registre su pago en UCond y comuníquese con la administración sobre cualquier acción necesaria.",
			debt.Concepto, debt.Condominio, debt.Vivienda)
	}
	return email
}
