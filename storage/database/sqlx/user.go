package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/imani/core"
	"github.com/trezcool/imani/core/user"
)

type dbUser struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func toDBUser(usr user.User) dbUser {
	return dbUser{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     usr.IsActive,
		Roles:        pq.StringArray(usr.Roles),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func fromDBUser(u dbUser) user.User {
	return user.User{
		ID:           u.ID,
		Name:         u.Name.String,
		Username:     u.Username.String,
		Email:        u.Email.String,
		IsActive:     u.IsActive,
		Roles:        []string(u.Roles),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin.Time,
	}
}

func fromDBUsers(dbUsers []dbUser) []user.User {
	users := make([]user.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, fromDBUser(u))
	}
	return users
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT username, email FROM "user" WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query += ` AND id NOT IN (?)`
		var err error
		query, args, err = sqlx.In(query, username, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var matches []dbUser
	if err := repo.db.SelectContext(ctx, &matches, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	for _, m := range matches {
		if username != "" && m.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && m.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toDBUser(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var dbUsers []dbUser
	if err := repo.db.SelectContext(ctx, &dbUsers, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return fromDBUsers(dbUsers), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var u dbUser
	if err := repo.db.GetContext(ctx, &u, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return fromDBUser(u), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var u dbUser
	if err := repo.db.GetContext(ctx, &u, `SELECT * FROM "user" WHERE username = $1`, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by username")
	}
	return fromDBUser(u), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u dbUser
	if err := repo.db.GetContext(ctx, &u, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return fromDBUser(u), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var u dbUser
	query := `SELECT * FROM "user" WHERE username = $1 OR email = $1`
	if err := repo.db.GetContext(ctx, &u, query, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by username or email")
	}
	return fromDBUser(u), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var conds []string
	var args []interface{}

	if filter.Search != "" {
		conds = append(conds, `(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)`)
		s := "%" + filter.Search + "%"
		args = append(args, s, s, s)
	}
	if filter.Roles != nil {
		conds = append(conds, `roles && ?`)
		args = append(args, pq.StringArray(filter.Roles))
	}
	if filter.IsActive != nil {
		conds = append(conds, `is_active = ?`)
		args = append(args, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, `created_at >= ?`)
		args = append(args, filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, `created_at <= ?`)
		args = append(args, filter.CreatedTo)
	}

	query := `SELECT * FROM "user"`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	if len(ordering) > 0 {
		ords := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			ords = append(ords, ord.String())
		}
		query += ` ORDER BY ` + strings.Join(ords, `, `)
	} else {
		query += ` ORDER BY created_at`
	}

	var dbUsers []dbUser
	if err := repo.db.SelectContext(ctx, &dbUsers, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return fromDBUsers(dbUsers), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	sets := []string{`updated_at = ?`}
	args := []interface{}{usr.UpdatedAt.UTC()}

	if usr.Name != "" {
		sets = append(sets, `name = ?`)
		args = append(args, usr.Name)
	}
	if usr.Username != "" {
		sets = append(sets, `username = ?`)
		args = append(args, usr.Username)
	}
	if usr.Email != "" {
		sets = append(sets, `email = ?`)
		args = append(args, usr.Email)
	}
	if usr.Roles != nil {
		sets = append(sets, `roles = ?`)
		args = append(args, pq.StringArray(usr.Roles))
	}
	if usr.PasswordHash != nil {
		sets = append(sets, `password_hash = ?`)
		args = append(args, usr.PasswordHash)
	}
	if isActive != nil {
		sets = append(sets, `is_active = ?`)
		args = append(args, *isActive)
	}
	args = append(args, usr.ID)

	query := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = ?`, strings.Join(sets, `, `))
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	query := `UPDATE "user" SET last_login = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, usr.LastLogin.UTC(), usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
