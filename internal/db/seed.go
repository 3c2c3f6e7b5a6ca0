package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"friscoplan/internal/auth"
	"friscoplan/internal/domain/calendar"
	"friscoplan/internal/platform/config"
)

// Seed is idempotent: it creates the admin login and the bundled school
// break table only when they are missing.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminUsername, cfg.SeedAdminPassword); err != nil {
		return err
	}
	return ensureSchoolHolidays(ctx, pool)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	// Stored the same way login looks it up, whatever casing the
	// environment supplied.
	username = auth.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE username = $1", username).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (username, password_hash, role)
    VALUES ($1,$2,$3)
  `, username, hash, auth.RoleAdmin)
	return err
}

func ensureSchoolHolidays(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM school_holidays").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, sh := range calendar.DefaultSchoolHolidays() {
		if _, err := pool.Exec(ctx, `
      INSERT INTO school_holidays (region, start_date, end_date, name)
      VALUES ($1,$2,$3,$4)
    `, sh.Region, sh.StartDate, sh.EndDate, sh.Name); err != nil {
			return err
		}
	}
	return nil
}
