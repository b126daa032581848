package devapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nailstudio/agenda/internal/dbx"
	"github.com/nailstudio/agenda/internal/devapi/migrations"
)

type scanner interface {
	Scan(dest ...any) error
}

// collection is a table whose rows belong to one operator (owner_id).
// columns excludes id and owner_id; scan reads id followed by columns.
type collection[T any] struct {
	table  string
	scan   func(scanner) (T, error)
	values func(T) []any
	setID  func(*T, int64)

	selectQ string
	insertQ string
	updateQ string
}

func newCollection[T any](table string, columns []string, scan func(scanner) (T, error), values func(T) []any, setID func(*T, int64)) *collection[T] {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = ?"
	}
	return &collection[T]{
		table:   table,
		scan:    scan,
		values:  values,
		setID:   setID,
		selectQ: fmt.Sprintf(`SELECT id, %s FROM %s WHERE owner_id = ?`, strings.Join(columns, ", "), table),
		insertQ: fmt.Sprintf(`INSERT INTO %s (owner_id, %s) VALUES (?%s)`,
			table, strings.Join(columns, ", "), strings.Repeat(", ?", len(columns))),
		updateQ: fmt.Sprintf(`UPDATE %s SET %s WHERE owner_id = ? AND id = ?`, table, strings.Join(sets, ", ")),
	}
}

func (c *collection[T]) list(ctx context.Context, db dbx.DBTX, owner int64) ([]T, error) {
	rows, err := db.QueryContext(ctx, c.selectQ+` ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := c.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", c.table, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", c.table, err)
	}
	return out, nil
}

func (c *collection[T]) get(ctx context.Context, db dbx.DBTX, owner, id int64) (T, error) {
	item, err := c.scan(db.QueryRowContext(ctx, c.selectQ+` AND id = ?`, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("failed to get %s[%d]: %w", c.table, id, err)
	}
	return item, nil
}

func (c *collection[T]) insert(ctx context.Context, db dbx.DBTX, owner int64, item T) (T, error) {
	res, err := db.ExecContext(ctx, c.insertQ, append([]any{owner}, c.values(item)...)...)
	if err != nil {
		return item, fmt.Errorf("failed to insert into %s: %w", c.table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return item, fmt.Errorf("failed to read %s id: %w", c.table, err)
	}
	c.setID(&item, id)
	return item, nil
}

func (c *collection[T]) replace(ctx context.Context, db dbx.DBTX, owner, id int64, item T) (T, error) {
	res, err := db.ExecContext(ctx, c.updateQ, append(c.values(item), owner, id)...)
	if err != nil {
		return item, fmt.Errorf("failed to update %s[%d]: %w", c.table, id, err)
	}
	if err := expectOne(res); err != nil {
		return item, err
	}
	c.setID(&item, id)
	return item, nil
}

func (c *collection[T]) remove(ctx context.Context, db dbx.DBTX, owner, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+c.table+` WHERE owner_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%d]: %w", c.table, id, err)
	}
	return expectOne(res)
}

func (c *collection[T]) removeAll(ctx context.Context, db dbx.DBTX, owner int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM `+c.table+` WHERE owner_id = ?`, owner); err != nil {
		return fmt.Errorf("failed to delete %s of %d: %w", c.table, owner, err)
	}
	return nil
}

// expectOne maps "no row matched" to ErrNotFound.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Store persists the API's data in SQLite. Clients, services and
// appointments are scoped to the operator that created them.
type Store struct {
	db           *sql.DB
	clients      *collection[Client]
	services     *collection[Service]
	appointments *collection[Appointment]
}

// OpenStore opens and migrates the database at dsn (":memory:" is fine).
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := dbx.OpenSQLite(ctx, dsn, migrations.Migrations)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	return NewStore(db), nil
}

// NewStore works on an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
		clients: newCollection("clients",
			[]string{"name", "surname", "phone", "notes"},
			func(r scanner) (Client, error) {
				var c Client
				err := r.Scan(&c.ID, &c.Name, &c.Surname, &c.Phone, &c.Notes)
				return c, err
			},
			func(c Client) []any { return []any{c.Name, c.Surname, c.Phone, c.Notes} },
			func(c *Client, id int64) { c.ID = id },
		),
		services: newCollection("services",
			[]string{"name", "price", "duration_minutes", "category", "description"},
			func(r scanner) (Service, error) {
				var s Service
				err := r.Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.Category, &s.Description)
				return s, err
			},
			func(s Service) []any { return []any{s.Name, s.Price, s.DurationMinutes, s.Category, s.Description} },
			func(s *Service, id int64) { s.ID = id },
		),
		appointments: newCollection("appointments",
			[]string{"service_id", "client_id", "date", "status", "description"},
			func(r scanner) (Appointment, error) {
				var a Appointment
				err := r.Scan(&a.ID, &a.ServiceID, &a.ClientID, &a.Date, &a.Status, &a.Description)
				return a, err
			},
			func(a Appointment) []any { return []any{a.ServiceID, a.ClientID, a.Date, a.Status, a.Description} },
			func(a *Appointment, id int64) { a.ID = id },
		),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// --- users ---

const userColumns = `id, name, surname, username, phone, role, is_active, password_hash`

func scanUser(r scanner) (User, error) {
	var u User
	err := r.Scan(&u.ID, &u.Name, &u.Surname, &u.Username, &u.Phone, &u.Role, &u.IsActive, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func userByID(ctx context.Context, db dbx.DBTX, id int64) (User, error) {
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// operatorByID hides admin accounts from the user management operations.
func operatorByID(ctx context.Context, db dbx.DBTX, id int64) (User, error) {
	u, err := userByID(ctx, db, id)
	if err != nil {
		return User{}, err
	}
	if u.Role != RoleOperator {
		return User{}, ErrNotFound
	}
	return u, nil
}

func usernameTaken(ctx context.Context, db dbx.DBTX, username string, except int64) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?`, username, except).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		taken, err := usernameTaken(ctx, tx, u.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrUserExists
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (name, surname, username, phone, role, is_active, password_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.Name, u.Surname, u.Username, u.Phone, u.Role, u.IsActive, u.PasswordHash)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		u.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByUsername matches case-insensitively.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *Store) User(ctx context.Context, id int64) (User, error) {
	return userByID(ctx, s.db, id)
}

// Operators lists the non-admin accounts in id order.
func (s *Store) Operators(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY id`, RoleOperator)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return out, nil
}

// UpdateCredentials changes an operator's username and, when hash is not
// empty, password.
func (s *Store) UpdateCredentials(ctx context.Context, id int64, username, hash string) (User, error) {
	var u User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if u, err = operatorByID(ctx, tx, id); err != nil {
			return err
		}
		taken, err := usernameTaken(ctx, tx, username, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrUserExists
		}
		u.Username = username
		if hash != "" {
			u.PasswordHash = hash
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET username = ?, password_hash = ? WHERE id = ?`,
			u.Username, u.PasswordHash, id); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) SetActive(ctx context.Context, id int64, active bool) (User, error) {
	var u User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if u, err = operatorByID(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, id); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		u.IsActive = active
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// DeleteUser removes an operator together with everything they own.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := operatorByID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.appointments.removeAll(ctx, tx, id); err != nil {
			return err
		}
		if err := s.services.removeAll(ctx, tx, id); err != nil {
			return err
		}
		if err := s.clients.removeAll(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// --- clients ---

func (s *Store) Clients(ctx context.Context, owner int64) ([]Client, error) {
	return s.clients.list(ctx, s.db, owner)
}

func (s *Store) CreateClient(ctx context.Context, owner int64, c Client) (Client, error) {
	return s.clients.insert(ctx, s.db, owner, c)
}

func (s *Store) UpdateClient(ctx context.Context, owner, id int64, c Client) (Client, error) {
	return s.clients.replace(ctx, s.db, owner, id, c)
}

func (s *Store) DeleteClient(ctx context.Context, owner, id int64) error {
	return s.clients.remove(ctx, s.db, owner, id)
}

// --- services ---

func (s *Store) Services(ctx context.Context, owner int64) ([]Service, error) {
	return s.services.list(ctx, s.db, owner)
}

func (s *Store) CreateService(ctx context.Context, owner int64, sv Service) (Service, error) {
	return s.services.insert(ctx, s.db, owner, sv)
}

func (s *Store) UpdateService(ctx context.Context, owner, id int64, sv Service) (Service, error) {
	return s.services.replace(ctx, s.db, owner, id, sv)
}

func (s *Store) DeleteService(ctx context.Context, owner, id int64) error {
	return s.services.remove(ctx, s.db, owner, id)
}

// --- appointments ---

func (s *Store) Appointments(ctx context.Context, owner int64) ([]AppointmentView, error) {
	list, err := s.appointments.list(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}
	out := make([]AppointmentView, 0, len(list))
	for _, a := range list {
		v, err := s.view(ctx, s.db, owner, a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) Appointment(ctx context.Context, owner, id int64) (AppointmentView, error) {
	a, err := s.appointments.get(ctx, s.db, owner, id)
	if err != nil {
		return AppointmentView{}, err
	}
	return s.view(ctx, s.db, owner, a)
}

func (s *Store) CreateAppointment(ctx context.Context, owner int64, a Appointment) (Appointment, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkRefs(ctx, tx, owner, a); err != nil {
			return err
		}
		var err error
		a, err = s.appointments.insert(ctx, tx, owner, a)
		return err
	})
	if err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// UpdateAppointment replaces everything but the client.
func (s *Store) UpdateAppointment(ctx context.Context, owner, id int64, a Appointment) (Appointment, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := s.appointments.get(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		a.ClientID = cur.ClientID
		if err := s.checkRefs(ctx, tx, owner, a); err != nil {
			return err
		}
		a, err = s.appointments.replace(ctx, tx, owner, id, a)
		return err
	})
	if err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, owner, id int64) error {
	return s.appointments.remove(ctx, s.db, owner, id)
}

func (s *Store) checkRefs(ctx context.Context, db dbx.DBTX, owner int64, a Appointment) error {
	if _, err := s.clients.get(ctx, db, owner, a.ClientID); errors.Is(err, ErrNotFound) {
		return ErrUnknownClient
	} else if err != nil {
		return err
	}
	if _, err := s.services.get(ctx, db, owner, a.ServiceID); errors.Is(err, ErrNotFound) {
		return ErrUnknownService
	} else if err != nil {
		return err
	}
	return nil
}

// view embeds the client, service and attending operator; references that
// no longer exist are left out.
func (s *Store) view(ctx context.Context, db dbx.DBTX, owner int64, a Appointment) (AppointmentView, error) {
	v := AppointmentView{Appointment: a}

	c, err := s.clients.get(ctx, db, owner, a.ClientID)
	switch {
	case err == nil:
		v.Client = &c
	case !errors.Is(err, ErrNotFound):
		return v, err
	}

	sv, err := s.services.get(ctx, db, owner, a.ServiceID)
	switch {
	case err == nil:
		v.Service = &sv
	case !errors.Is(err, ErrNotFound):
		return v, err
	}

	u, err := userByID(ctx, db, owner)
	switch {
	case err == nil:
		v.AttendedBy = &u
	case !errors.Is(err, ErrNotFound):
		return v, err
	}
	return v, nil
}
