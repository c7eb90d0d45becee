package storage

import (
	"api/domain"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

// --- users ---

func (r *PostgresRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	row := r.pool.QueryRow(ctx, "INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id", username, passwordHash)

	var id string
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return "", domain.ErrDuplicateUsername
			}
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		return "", fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return id, nil
}

func (r *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := r.pool.QueryRow(ctx, "SELECT id, password_hash FROM users WHERE username = $1", username)

	if err := row.Scan(&user.Id, &user.PasswordHash); err != nil {
		return domain.User{}, wrapQueryErr(err, domain.ErrUserNotFound)
	}

	return user, nil
}

func (r *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := r.pool.QueryRow(ctx, "SELECT username, password_hash FROM users WHERE id = $1", id)

	if err := row.Scan(&user.Username, &user.PasswordHash); err != nil {
		return domain.User{}, wrapQueryErr(err, domain.ErrUserNotFound)
	}

	return user, nil
}

// GetUsersByIds resolves display identities for a set of user ids. Unknown
// ids are simply absent from the result; callers decide whether that matters.
func (r *PostgresRepo) GetUsersByIds(ctx context.Context, ids []string) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, username FROM users WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, wrapQueryErr(err, nil)
	}
	defer rows.Close()

	users := make([]domain.User, 0, len(ids))
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Id, &u.Username); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, nil)
	}

	return users, nil
}

// --- rooms ---

func (r *PostgresRepo) CreateRoom(ctx context.Context, id, name, description string) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO rooms(id, name, description, status) VALUES($1, $2, $3, $4)",
		id, name, description, domain.RoomStatusOpen)
	if err != nil {
		return wrapQueryErr(err, nil)
	}
	return nil
}

func (r *PostgresRepo) GetRoomById(ctx context.Context, id string) (domain.Room, error) {
	room := domain.Room{Id: id}

	row := r.pool.QueryRow(ctx, "SELECT name, description, status FROM rooms WHERE id = $1", id)

	if err := row.Scan(&room.Name, &room.Description, &room.Status); err != nil {
		return domain.Room{}, wrapQueryErr(err, domain.ErrRoomNotFound)
	}

	return room, nil
}

func (r *PostgresRepo) ListOpenRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, description, status FROM rooms WHERE status = $1 ORDER BY created_at DESC",
		domain.RoomStatusOpen)
	if err != nil {
		return nil, wrapQueryErr(err, nil)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.Id, &room.Name, &room.Description, &room.Status); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, nil)
	}

	return rooms, nil
}

// --- games ---

func (r *PostgresRepo) CreateGame(ctx context.Context, data []byte) (int64, error) {
	row := r.pool.QueryRow(ctx, "INSERT INTO games(data) VALUES($1) RETURNING id", data)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, wrapQueryErr(err, nil)
	}
	return id, nil
}

func (r *PostgresRepo) SaveGame(ctx context.Context, gameId int64, data []byte) error {
	tag, err := r.pool.Exec(ctx, "UPDATE games SET data = $1 WHERE id = $2", data, gameId)
	if err != nil {
		return wrapQueryErr(err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

func (r *PostgresRepo) LinkRoomGame(ctx context.Context, roomId string, gameId int64) error {
	_, err := r.pool.Exec(ctx, "INSERT INTO room_games(room_id, game_id) VALUES($1, $2)", roomId, gameId)
	if err != nil {
		return wrapQueryErr(err, nil)
	}
	return nil
}

// LoadGameByRoomId fetches the persisted board document of a room's game via
// the room_games association.
func (r *PostgresRepo) LoadGameByRoomId(ctx context.Context, roomId string) (int64, []byte, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT g.id, g.data FROM games g
		 JOIN room_games rg ON rg.game_id = g.id
		 WHERE rg.room_id = $1`, roomId)

	var id int64
	var data []byte
	if err := row.Scan(&id, &data); err != nil {
		return 0, nil, wrapQueryErr(err, domain.ErrGameNotFound)
	}

	return id, data, nil
}

// wrapQueryErr keeps context cancellations as-is, maps missing rows to the
// given expected sentinel, and labels everything else unexpected.
func wrapQueryErr(err error, notFound error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows) && notFound != nil:
		return notFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
}
