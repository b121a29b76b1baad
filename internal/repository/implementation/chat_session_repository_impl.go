package implementation

import (
	"context"
	"errors"
	"time"

	"healthassist-be/internal/entity"
	"healthassist-be/internal/mapper"
	"healthassist-be/internal/model"
	"healthassist-be/internal/repository/contract"
	"healthassist-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrDuplicateSession
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

func (r *ChatSessionRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&m), nil
}

func (r *ChatSessionRepositoryImpl) FindByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *ChatSessionRepositoryImpl) FindOwned(ctx context.Context, owner, id string) (*entity.ChatSession, error) {
	return r.findOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{Owner: owner},
	)
}

func (r *ChatSessionRepositoryImpl) FindAllOwned(ctx context.Context, owner string) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.OwnedBy{Owner: owner},
		specification.OrderBy{Field: "last_activity", Desc: true},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatSessionToEntity(m)
	}
	return entities, nil
}

func (r *ChatSessionRepositoryImpl) DeleteOwned(ctx context.Context, owner, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := r.applySpecifications(tx,
			specification.ByID{ID: id},
			specification.OwnedBy{Owner: owner},
		).Delete(&model.ChatSession{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return r.applySpecifications(tx, specification.ByChatSessionID{ChatSessionID: id}).
			Delete(&model.ChatMessage{}).Error
	})
	return deleted, err
}

func (r *ChatSessionRepositoryImpl) AppendMessage(ctx context.Context, owner string, message *entity.ChatMessage) error {
	m, err := r.mapper.ChatMessageToModel(message)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := m.Timestamp
		seed := model.ChatSession{Id: m.ChatSessionId, Owner: owner, CreatedAt: now, LastActivity: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		// Row lock serialises concurrent appenders on the same session (Postgres only; SQLite locks the file)
		locked := tx
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var current model.ChatSession
		if err := r.applySpecifications(locked, specification.ByID{ID: m.ChatSessionId}).First(&current).Error; err != nil {
			return err
		}
		if current.Owner != owner {
			return contract.ErrOwnerMismatch
		}

		var lastSeq int64
		row := r.applySpecifications(tx.Model(&model.ChatMessage{}), specification.ByChatSessionID{ChatSessionID: m.ChatSessionId}).
			Select("COALESCE(MAX(seq), 0)").Row()
		if err := row.Scan(&lastSeq); err != nil {
			return err
		}
		m.Seq = lastSeq + 1

		if err := tx.Create(m).Error; err != nil {
			return err
		}

		if err := r.applySpecifications(tx.Model(&model.ChatSession{}), specification.ByID{ID: m.ChatSessionId}).
			Update("last_activity", now).Error; err != nil {
			return err
		}

		*message = *r.mapper.ChatMessageToEntity(m)
		return nil
	})
}

func (r *ChatSessionRepositoryImpl) FindMessagesOwned(ctx context.Context, owner, sessionId string) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.SessionOwnedBy{Owner: owner},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatMessagesToEntities(models), nil
}

func (r *ChatSessionRepositoryImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}
