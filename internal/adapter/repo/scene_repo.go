package repo

import (
	"context"
	"fmt"

	"filmflow/internal/domain"
	"filmflow/internal/infra"
	"filmflow/internal/sqlinline"
)

// SceneRepositoryPG implements domain.SceneRepository.
type SceneRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSceneRepository(sql infra.SQLExecutor) *SceneRepositoryPG {
	return &SceneRepositoryPG{sql: sql}
}

// GetForUser loads a scene with its cast. Scenes of other users are reported
// as not found.
func (r *SceneRepositoryPG) GetForUser(ctx context.Context, sceneID, userID string) (*domain.Scene, error) {
	var s domain.Scene
	err := r.sql.QueryRow(ctx, sqlinline.QSelectSceneForUser, sceneID, userID).Scan(
		&s.ID, &s.UserID, &s.Title, &s.Description, &s.Location, &s.TimeOfDay, &s.Mood,
	)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select scene: %w", err)
	}

	rows, err := r.sql.Query(ctx, sqlinline.QListSceneActors, s.ID)
	if err != nil {
		return nil, fmt.Errorf("list scene actors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.Actor
		if err := rows.Scan(&a.ID, &a.Name, &a.Age, &a.Gender, &a.Description, &a.ImageURL, &a.VoiceID); err != nil {
			return nil, fmt.Errorf("scan scene actor: %w", err)
		}
		s.Actors = append(s.Actors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scene actors: %w", err)
	}
	return &s, nil
}

// ActorImageURLs returns reference image urls of the user's actors in the
// order of actorIDs. Actors without an image are skipped.
func (r *SceneRepositoryPG) ActorImageURLs(ctx context.Context, userID string, actorIDs []string) ([]string, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSelectActorImageURLs, userID, actorIDs)
	if err != nil {
		return nil, fmt.Errorf("select actor images: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan actor image: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select actor images: %w", err)
	}
	return urls, nil
}

var _ domain.SceneRepository = (*SceneRepositoryPG)(nil)
