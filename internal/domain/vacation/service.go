package vacation

import (
	"context"
	"time"

	"friscoplan/internal/domain/calendar"
	"friscoplan/internal/domain/roster"
)

// RosterReader is the slice of the worker store the planner needs.
type RosterReader interface {
	ListWorkers(ctx context.Context) ([]roster.Worker, error)
	WorkerExists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	Store        Store
	Roster       RosterReader
	Validator    *Validator
	DefaultLimit int
}

func NewService(store Store, rosterStore RosterReader, validator *Validator, defaultLimit int) *Service {
	return &Service{Store: store, Roster: rosterStore, Validator: validator, DefaultLimit: defaultLimit}
}

func (s *Service) List(ctx context.Context, from, to *time.Time) ([]Vacation, error) {
	return s.Store.ListVacations(ctx, from, to)
}

func (s *Service) Get(ctx context.Context, id string) (Vacation, error) {
	return s.Store.GetVacation(ctx, id)
}

// Plan admits and stores a new vacation. The capacity check runs inside
// the store's write transaction against the snapshot read there.
func (s *Service) Plan(ctx context.Context, p Proposal) (Vacation, error) {
	limit, err := s.Limit(ctx)
	if err != nil {
		return Vacation{}, err
	}
	if err := s.requireWorker(ctx, p.WorkerID); err != nil {
		return Vacation{}, err
	}

	record := Vacation{
		WorkerID:  p.WorkerID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    StatusApproved,
	}
	return s.Store.CreateVacation(ctx, record, func(existing []Vacation) error {
		return s.Validator.Validate(p, existing, limit)
	})
}

// Reschedule re-validates an edit with the edited vacation excluded from
// the count, so a vacation never conflicts with itself.
func (s *Service) Reschedule(ctx context.Context, id string, p Proposal) (Vacation, error) {
	limit, err := s.Limit(ctx)
	if err != nil {
		return Vacation{}, err
	}
	if err := s.requireWorker(ctx, p.WorkerID); err != nil {
		return Vacation{}, err
	}

	p.ExcludeID = id
	record := Vacation{
		WorkerID:  p.WorkerID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    StatusApproved,
	}
	return s.Store.UpdateVacation(ctx, id, record, func(existing []Vacation) error {
		return s.Validator.Validate(p, existing, limit)
	})
}

func (s *Service) Remove(ctx context.Context, id string) error {
	return s.Store.DeleteVacation(ctx, id)
}

func (s *Service) Limit(ctx context.Context) (int, error) {
	return s.Store.MaxConcurrent(ctx, s.DefaultLimit)
}

func (s *Service) SetLimit(ctx context.Context, limit int) error {
	return s.Store.SetMaxConcurrent(ctx, limit)
}

func (s *Service) Stats(ctx context.Context, today time.Time) (Stats, error) {
	workers, err := s.Roster.ListWorkers(ctx)
	if err != nil {
		return Stats{}, err
	}
	vacations, err := s.Store.ListVacations(ctx, nil, nil)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(workers, vacations, today), nil
}

func (s *Service) Upcoming(ctx context.Context, today time.Time, limit int) ([]UpcomingVacation, error) {
	workers, err := s.Roster.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	vacations, err := s.Store.ListVacations(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return Upcoming(workers, vacations, today, limit), nil
}

func (s *Service) Occupancy(ctx context.Context, year int, month time.Month) ([]DayOccupancy, error) {
	limit, err := s.Limit(ctx)
	if err != nil {
		return nil, err
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	vacations, err := s.Store.ListVacations(ctx, &from, &to)
	if err != nil {
		return nil, err
	}
	school, err := s.Store.ListSchoolHolidays(ctx)
	if err != nil {
		return nil, err
	}
	return MonthOccupancy(s.Validator.Calendar, school, vacations, year, month, limit), nil
}

func (s *Service) SchoolHolidays(ctx context.Context) ([]calendar.SchoolHoliday, error) {
	return s.Store.ListSchoolHolidays(ctx)
}

func (s *Service) requireWorker(ctx context.Context, workerID string) error {
	if workerID == "" {
		// Let the validator report the missing field with the rest of its
		// taxonomy.
		return nil
	}
	exists, err := s.Roster.WorkerExists(ctx, workerID)
	if err != nil {
		return err
	}
	if !exists {
		return &RuleError{Code: CodeUnknownWorker}
	}
	return nil
}
