package notifications

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/ucond/ucond_backend/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=sweep.go -destination=mocks/mock_sweep.go -package=mock_notifications

const DefaultTimezone = "America/Caracas"

var tracer = otel.Tracer("github.com/ucond/ucond_backend/notifications")

// Debt is an active debt whose expense is close to or past its due date.
type Debt struct {
	ID                int
	Concepto          string
	FechaLimite       time.Time
	Monto             decimal.Decimal
	Condominio        string
	Vivienda          string
	CedulaPropietario string
}

type Owner struct {
	Correo   string
	Nombre   string
	Apellido string
}

type DebtFinder interface {
	// FindDebtsDue returns active debts whose due date falls within [from, to].
	FindDebtsDue(ctx context.Context, from, to time.Time) ([]Debt, error)
}

type OwnerDirectory interface {
	// OwnersByCedula resolves the accounts registered under the given cédulas. Cédulas
	// without an account are left out of the map.
	OwnersByCedula(ctx context.Context, cedulas []string) (map[string]Owner, error)
}

type Mailer interface {
	// Send delivers email and waits until the provider reports the outcome.
	Send(ctx context.Context, email Email) error
}

// Failure is a debt whose reminder could not be delivered.
type Failure struct {
	DebtID int
	To     string
	Err    error
}

type Report struct {
	Found    int       `json:"encontradas"`
	Sent     int       `json:"enviadas"`
	Skipped  int       `json:"omitidas"`
	Failures []Failure `json:"-"`
}

// Err joins the failures of the run, nil when every reminder went out.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("deuda %d (%s): %w", f.DebtID, f.To, f.Err))
	}
	return errors.Join(errs...)
}

// Sweeper sends one reminder per active debt due between two days ago and tomorrow.
type Sweeper struct {
	Debts    DebtFinder
	Owners   OwnerDirectory
	Mailer   Mailer
	Location *time.Location
	Now      func() time.Time
	Logger   *logrus.Logger
}

// NewSweeper builds a sweeper over the given collaborators using NOTIFICATION_TZ for
// the notion of today.
func NewSweeper(debts DebtFinder, owners OwnerDirectory, mailer Mailer) *Sweeper {
	return &Sweeper{
		Debts:    debts,
		Owners:   owners,
		Mailer:   mailer,
		Location: LocationFromEnv(),
		Now:      time.Now,
		Logger:   config.GetLogger(),
	}
}

// LocationFromEnv loads NOTIFICATION_TZ, falling back to America/Caracas and then UTC.
func LocationFromEnv() *time.Location {
	name := strings.TrimSpace(os.Getenv("NOTIFICATION_TZ"))
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Window returns today and the due date range the sweep covers, by calendar day.
func (s *Sweeper) Window() (today, from, to time.Time) {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today = calendarDay(now(), loc)
	from = today.AddDate(0, 0, -2)
	to = today.AddDate(0, 0, 2).Add(-time.Second)
	return today, from, to
}

// Run performs one sweep. A failed delivery does not stop the run; failures are
// collected in the report and joined into the returned error.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	ctx, span := tracer.Start(ctx, "notifications.Sweep")
	defer span.End()

	today, from, to := s.Window()
	debts, err := s.Debts.FindDebtsDue(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	report := &Report{Found: len(debts)}
	span.SetAttributes(attribute.Int("sweep.debts", len(debts)))
	if len(debts) == 0 {
		return report, nil
	}

	cedulas := make([]string, 0, len(debts))
	seen := make(map[string]bool, len(debts))
	for _, d := range debts {
		if d.CedulaPropietario == "" || seen[d.CedulaPropietario] {
			continue
		}
		seen[d.CedulaPropietario] = true
		cedulas = append(cedulas, d.CedulaPropietario)
	}
	owners, err := s.Owners.OwnersByCedula(ctx, cedulas)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, d := range debts {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, Failure{DebtID: d.ID, Err: err})
			break
		}
		owner, ok := owners[d.CedulaPropietario]
		if !ok {
			report.Skipped++
			continue
		}
		email := ComposeEmail(d, owner, today)
		if err := s.Mailer.Send(ctx, email); err != nil {
			report.Failures = append(report.Failures, Failure{DebtID: d.ID, To: owner.Correo, Err: err})
			s.logger().WithFields(logrus.Fields{
				"module":   "Notifications",
				"funcName": "Run",
				"deuda":    d.ID,
				"to":       owner.Correo,
			}).Error(err.Error())
			continue
		}
		report.Sent++
	}

	span.SetAttributes(
		attribute.Int("sweep.sent", report.Sent),
		attribute.Int("sweep.skipped", report.Skipped),
		attribute.Int("sweep.failed", len(report.Failures)),
	)
	if err := report.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	return report, nil
}

func (s *Sweeper) logger() *logrus.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return config.GetLogger()
}
