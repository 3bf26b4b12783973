package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
)

const notificationColumns = `id, user_id, title, message, type, category, is_read, created_at, scheduled_for, channels`

type PgNotificationRepository struct {
	db     *sqlx.DB
	strict bool
}

func NewPgNotificationRepository(db *sqlx.DB, strict bool) *PgNotificationRepository {
	return &PgNotificationRepository{db: db, strict: strict}
}

func (r *PgNotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		return domain.ErrMissingID
	}
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (:id, :user_id, :title, :message, :type, :category, :is_read, :created_at, :scheduled_for, :channels)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrDuplicateID
	}
	return nil
}

func (r *PgNotificationRepository) Get(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	var n domain.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// buildListQuery turns a domain query into SQL with positional arguments.
func buildListQuery(q domain.Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch q.Filter {
	case "", domain.FilterAll:
	case domain.FilterUnread:
		where = append(where, "is_read = FALSE")
	default:
		where = append(where, "type = "+arg(string(q.Filter)))
	}
	if q.Category != "" {
		where = append(where, "category = "+arg(string(q.Category)))
	}
	if term := q.Search; term != "" {
		p := arg("%" + escapeLike(term) + "%")
		where = append(where, "(title ILIKE "+p+" OR message ILIKE "+p+")")
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + notificationColumns + ` FROM notifications`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, seq ASC")
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + arg(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET " + arg(q.Offset))
	}
	return b.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PgNotificationRepository) List(ctx context.Context, q domain.Query) ([]domain.Notification, error) {
	query, args := buildListQuery(q)
	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE is_read = FALSE`
	var count int
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}

func (r *PgNotificationRepository) MarkAsRead(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND is_read = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}
	if !r.strict {
		return false, nil
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrNotificationNotFound
	}
	return false, nil
}

func (r *PgNotificationRepository) MarkAllAsRead(ctx context.Context) (int, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE is_read = FALSE
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (r *PgNotificationRepository) Len(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications`)
	return count, err
}
