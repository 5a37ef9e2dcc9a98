package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"unihub/internal/database"
	"unihub/internal/util"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Approver is a dean who can decide on meeting requests for a university.
type Approver struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Directory is the read-only lookup of universities and their deans. Lookups
// go through a Redis cache; a cache outage degrades to direct database reads.
type Directory struct {
	db       *database.Database
	redis    *redis.Client
	logger   *slog.Logger
	cacheTTL time.Duration
}

func NewDirectory(db *database.Database, redisClient *redis.Client, logger *slog.Logger) Directory {
	return Directory{
		db:       db,
		redis:    redisClient,
		logger:   logger,
		cacheTTL: 5 * time.Minute,
	}
}

func (d *Directory) UniversityName(ctx context.Context, universityID uuid.UUID) (string, error) {
	key := fmt.Sprintf("tenant:name:%s", universityID)

	if d.redis != nil {
		if name, err := d.redis.Get(ctx, key).Result(); err == nil {
			return name, nil
		} else if err != redis.Nil {
			d.logger.Debug("Tenant name cache read failed", "university_id", universityID, "error", err)
		}
	}

	university, err := d.db.GetUniversityByID(ctx, universityID)
	if err != nil {
		return "", fmt.Errorf("tenant: failed to look up university %s: %w", universityID, err)
	}

	if d.redis != nil {
		if err := d.redis.Set(ctx, key, university.Name, d.cacheTTL).Err(); err != nil {
			d.logger.Debug("Tenant name cache write failed", "university_id", universityID, "error", err)
		}
	}

	return university.Name, nil
}

// ApproversForUniversity returns the deans of the given university, the
// recipients of new-request emails.
func (d *Directory) ApproversForUniversity(ctx context.Context, universityID uuid.UUID) ([]Approver, error) {
	key := fmt.Sprintf("tenant:approvers:%s", universityID)

	if d.redis != nil {
		if cached, err := d.redis.Get(ctx, key).Bytes(); err == nil {
			var approvers []Approver
			if err := json.Unmarshal(cached, &approvers); err == nil {
				return approvers, nil
			}
			d.logger.Debug("Tenant approver cache entry corrupt, refetching", "university_id", universityID)
		} else if err != redis.Nil {
			d.logger.Debug("Tenant approver cache read failed", "university_id", universityID, "error", err)
		}
	}

	deans, err := d.db.ListUsers(ctx, database.ListUsersParams{
		Role:         util.Some("dean"),
		UniversityID: util.Some(universityID),
	})
	if err != nil {
		return nil, fmt.Errorf("tenant: failed to list approvers for university %s: %w", universityID, err)
	}

	approvers := make([]Approver, len(deans))
	for i, dean := range deans {
		approvers[i] = Approver{ID: dean.ID, Name: dean.Name, Email: dean.Email}
	}

	if d.redis != nil {
		if encoded, err := json.Marshal(approvers); err == nil {
			if err := d.redis.Set(ctx, key, encoded, d.cacheTTL).Err(); err != nil {
				d.logger.Debug("Tenant approver cache write failed", "university_id", universityID, "error", err)
			}
		}
	}

	return approvers, nil
}
