package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pqrssi-portal/config"
	"pqrssi-portal/models"
	"pqrssi-portal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// CreatedComment is the comment of the history entry written with every new request.
	CreatedComment = "Request created"
	// AdminCommentPrefix marks history entries written by a status change.
	AdminCommentPrefix = "Status changed by administrator: "
)

// Catalog is the part of CatalogService the lifecycle manager depends on.
type Catalog interface {
	CategoryExists(ctx context.Context, id int) (bool, error)
	StatusByID(ctx context.Context, id int) (*models.Status, error)
}

// RequestService is the request lifecycle manager. Every status write is
// paired with a history entry in the same transaction.
type RequestService struct {
	db       *gorm.DB
	catalog  Catalog
	workflow *Workflow
	notifier Notifier
	now      func() time.Time
}

func NewRequestService(db *gorm.DB, catalog Catalog, workflow *Workflow, notifier Notifier) *RequestService {
	if db == nil {
		db = config.DB
	}
	if workflow == nil {
		workflow = NewWorkflow(nil)
	}
	return &RequestService{
		db:       db,
		catalog:  catalog,
		workflow: workflow,
		notifier: notifier,
		now:      time.Now,
	}
}

// Workflow returns the transition policy in use.
func (s *RequestService) Workflow() *Workflow {
	return s.workflow
}

// Submit creates a request in the submitted status together with its creation
// history entry, and returns the new request id.
func (s *RequestService) Submit(ctx context.Context, who Identity, reqType, description string, categoryID int) (int, error) {
	if !who.LoggedIn {
		return 0, ErrUnauthenticated
	}

	reqType = utils.SanitizeInput(reqType)
	description = utils.SanitizeInput(description)
	if reqType == "" || description == "" {
		return 0, fmt.Errorf("type and description are required: %w", ErrInvalidInput)
	}

	ok, err := s.catalog.CategoryExists(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("category %d: %w", categoryID, ErrUnknownCategory)
	}

	now := s.now()
	request := models.Request{
		Type:        reqType,
		Description: description,
		SubmittedAt: now,
		UserID:      who.UserID,
		CategoryID:  categoryID,
		StatusID:    models.StatusSubmitted,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&request).Error; err != nil {
			return fmt.Errorf("insert request: %w", err)
		}

		entry := models.HistoryEntry{
			RequestID: request.RequestID,
			StatusID:  models.StatusSubmitted,
			Comment:   CreatedComment,
			CreatedAt: now,
		}
		if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
			return fmt.Errorf("insert creation history: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return request.RequestID, nil
}

// ChangeStatus moves a request to newStatusID and logs the administrator's
// comment. The owner is notified in the background after the transaction
// commits; a failed notification is logged and does not undo the change.
func (s *RequestService) ChangeStatus(ctx context.Context, who Identity, requestID, newStatusID int, comment string) error {
	if !who.LoggedIn || !who.IsAdmin {
		return ErrForbidden
	}

	status, err := s.catalog.StatusByID(ctx, newStatusID)
	if err != nil {
		return err
	}

	comment = AdminCommentPrefix + utils.SanitizeInput(comment)

	var previousStatusID int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Request
		res := tx.Model(&models.Request{}).
			Select("id", "usuario_id", "estado_id").
			Where("id = ?", requestID).
			Find(&current)
		if res.Error != nil {
			return fmt.Errorf("load request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotFound
		}

		if !s.workflow.Allows(current.StatusID, newStatusID) {
			return fmt.Errorf("%d -> %d: %w", current.StatusID, newStatusID, ErrTransitionNotAllowed)
		}
		previousStatusID = current.StatusID

		at, err := s.nextHistoryTime(tx, requestID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Request{}).
			Where("id = ?", requestID).
			Update("estado_id", newStatusID).Error; err != nil {
			return fmt.Errorf("update request status: %w", err)
		}

		entry := models.HistoryEntry{
			RequestID: requestID,
			StatusID:  newStatusID,
			Comment:   comment,
			CreatedAt: at,
		}
		if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, requestID, previousStatusID, status, comment)
	return nil
}

// nextHistoryTime keeps history timestamps non-decreasing per request even if
// the clock of this process is behind the one that wrote the last entry.
func (s *RequestService) nextHistoryTime(tx *gorm.DB, requestID int) (time.Time, error) {
	now := s.now()

	var last sql.NullTime
	if err := tx.Model(&models.HistoryEntry{}).
		Select("MAX(fecha)").
		Where("pqrssi_id = ?", requestID).
		Row().Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("load last history time: %w", err)
	}
	if last.Valid && last.Time.After(now) {
		return last.Time, nil
	}
	return now, nil
}

type ownerRow struct {
	RequestID int    `gorm:"column:id"`
	Type      string `gorm:"column:tipo"`
	Name      string `gorm:"column:nombre"`
	Email     string `gorm:"column:email"`
}

// notify emails the owner from a goroutine so a slow mail relay never holds
// up the caller; the change is already committed.
func (s *RequestService) notify(ctx context.Context, requestID, previousStatusID int, status *models.Status, comment string) {
	if s.notifier == nil {
		return
	}
	ctx = persistentContext(ctx)

	go func() {
		var owner ownerRow
		err := s.db.WithContext(ctx).Table("pqrssi p").
			Select("p.id, p.tipo, u.nombre, u.email").
			Joins("JOIN usuarios u ON u.id = p.usuario_id").
			Where("p.id = ?", requestID).
			Scan(&owner).Error
		if err != nil {
			config.Logger.Warn().Err(err).Int("request_id", requestID).Msg("status notification skipped: owner lookup failed")
			return
		}
		if strings.TrimSpace(owner.Email) == "" {
			return
		}

		change := StatusChange{
			RequestID:        requestID,
			RequestType:      owner.Type,
			OwnerName:        owner.Name,
			OwnerEmail:       owner.Email,
			PreviousStatusID: previousStatusID,
			StatusID:         status.StatusID,
			StatusName:       status.Name,
			Comment:          comment,
		}
		if err := s.notifier.StatusChanged(ctx, change); err != nil {
			config.Logger.Warn().Err(err).Int("request_id", requestID).Msg("status notification failed")
		}
	}()
}

// ViewHistory returns a request's history in chronological order. Only the
// owner or an administrator may read it; anyone else gets ErrHistoryNotFound,
// the same answer as for an id that does not exist.
func (s *RequestService) ViewHistory(ctx context.Context, who Identity, requestID int) ([]models.HistoryView, error) {
	if !who.LoggedIn {
		return nil, ErrUnauthenticated
	}

	var request models.Request
	res := s.db.WithContext(ctx).Model(&models.Request{}).
		Select("id", "usuario_id").
		Where("id = ?", requestID).
		Find(&request)
	if res.Error != nil {
		return nil, fmt.Errorf("load request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrHistoryNotFound
	}
	if !who.CanView(request.UserID) {
		return nil, ErrHistoryNotFound
	}

	var entries []models.HistoryView
	err := s.db.WithContext(ctx).Table("historial h").
		Select("h.id, h.pqrssi_id, h.estado_id, e.nombre AS estado, h.comentario, h.fecha").
		Joins("LEFT JOIN estados e ON e.id = h.estado_id").
		Where("h.pqrssi_id = ?", requestID).
		Order("h.fecha ASC, h.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrHistoryNotFound
	}
	return entries, nil
}

// ViewOwnRequests returns the caller's requests with category, status and
// owner names. The order is unspecified.
func (s *RequestService) ViewOwnRequests(ctx context.Context, who Identity) ([]models.RequestSummary, error) {
	if !who.LoggedIn {
		return nil, ErrUnauthenticated
	}

	var rows []models.RequestSummary
	err := s.db.WithContext(ctx).Table("pqrssi p").
		Select("p.id, p.tipo, p.descripcion, e.nombre AS estado, p.fecha, c.nombre AS categoria, u.nombre AS usuario").
		Joins("JOIN estados e ON p.estado_id = e.id").
		Joins("JOIN categorias c ON p.categoria_id = c.id").
		Joins("JOIN usuarios u ON p.usuario_id = u.id").
		Where("p.usuario_id = ?", who.UserID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load own requests: %w", err)
	}
	return rows, nil
}

// ViewAllRequests returns every request as stored, for administrators.
func (s *RequestService) ViewAllRequests(ctx context.Context, who Identity) ([]models.Request, error) {
	if !who.LoggedIn || !who.IsAdmin {
		return nil, ErrForbidden
	}

	var rows []models.Request
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load all requests: %w", err)
	}
	return rows, nil
}
