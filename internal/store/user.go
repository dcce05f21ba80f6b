package store

import (
	"context"

	"medical-booking/internal/model"
)

func (s *Store) UpsertAccount(ctx context.Context, a *model.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, role, specialty, image) VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE
		 SET email = EXCLUDED.email, name = EXCLUDED.name, role = EXCLUDED.role,
		     specialty = EXCLUDED.specialty, image = EXCLUDED.image, updated_at = NOW()`,
		a.ID, a.Email, a.Name, a.Role, a.Specialty, a.Image,
	)
	return err
}

func (s *Store) ListDoctors(ctx context.Context) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, name, role, specialty, image
		 FROM users
		 WHERE role = 'doctor'
		 ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.Specialty, &a.Image); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
