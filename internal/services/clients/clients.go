// Package clients содержит бизнес-логику работы с карточками клиентов:
// регистрацию с фотографией, редактирование, смену роли, поиск и
// вычисление статуса доступа в зал.
package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// ClientRepository определяет методы хранилища для работы с клиентами.
type ClientRepository interface {
	// CreateClient добавляет клиента и возвращает его ID.
	CreateClient(ctx context.Context, c models.Client) (int, error)
	// ReadClient возвращает клиента по ID.
	ReadClient(ctx context.Context, id int) (*models.Client, error)
	// UpdateClient обновляет имя, удостоверение и телефон.
	UpdateClient(ctx context.Context, id int, fullName string, idCard int64, phone *string) (int, error)
	// UpdateClientPicture сохраняет путь к фотографии.
	UpdateClientPicture(ctx context.Context, id int, picture string) (int, error)
	// UpdateClientRole меняет роль.
	UpdateClientRole(ctx context.Context, id int, role models.Role) (int, error)
	// ListClients возвращает клиентов по фильтру.
	ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error)
	// LatestMembershipEnd возвращает последнюю дату окончания абонементов клиента.
	LatestMembershipEnd(ctx context.Context, clientID int) (*time.Time, error)
}

// PhotoStore сохраняет фотографии клиентов.
// Prepare кодирует новую фотографию во временный файл, Commit ставит его
// на место текущей, Discard удаляет файл, не попавший в базу.
type PhotoStore interface {
	Save(src, fullName string, idCard int64) (string, error)
	Prepare(src string) (string, error)
	Commit(tmp, oldPath, fullName string, idCard int64) (string, error)
	Discard(path string) error
}

// ClientService реализует операции над клиентами.
type ClientService struct {
	repo   ClientRepository
	photos PhotoStore
	log    *slog.Logger
	now    func() time.Time
}

// NewClientService создает новый экземпляр ClientService.
func NewClientService(repo ClientRepository, photos PhotoStore, log *slog.Logger) *ClientService {
	return &ClientService{
		repo:   repo,
		photos: photos,
		log:    log,
		now:    time.Now,
	}
}

// Create регистрирует нового клиента с ролью client.
// Фотография сохраняется до вставки строки; если вставка не удалась,
// сохранённый файл удаляется.
func (s *ClientService) Create(ctx context.Context, req models.DummyClient) (int, error) {
	const op = "clients.Create"

	picture, err := s.photos.Save(req.PicturePath, req.FullName, req.IDCard)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateClient(ctx, models.Client{
		FullName:    strings.TrimSpace(req.FullName),
		IDCard:      req.IDCard,
		PhoneNumber: optional(req.PhoneNumber),
		Role:        models.RoleClient,
		Picture:     &picture,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.discard(op, picture)
		return 0, err
	}

	s.log.Info("created new client", slog.Int("id", id))
	return id, nil
}

// Update обновляет данные клиента и, если передан новый файл, заменяет фотографию.
// Новая фотография кодируется до записи в базу: нечитаемый файл отклоняет
// изменение целиком. Путь в базе меняется только если итоговый путь фотографии изменился.
func (s *ClientService) Update(ctx context.Context, id int, req models.DummyClientUpdate) (*models.Client, error) {
	const op = "clients.Update"

	current, err := s.repo.ReadClient(ctx, id)
	if err != nil {
		return nil, err
	}

	var prepared string
	if req.PicturePath != "" {
		prepared, err = s.photos.Prepare(req.PicturePath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	fullName := strings.TrimSpace(req.FullName)
	if _, err = s.repo.UpdateClient(ctx, id, fullName, req.IDCard, optional(req.PhoneNumber)); err != nil {
		s.discard(op, prepared)
		return nil, err
	}

	if prepared != "" {
		var oldPath string
		if current.Picture != nil {
			oldPath = *current.Picture
		}
		newPath, err := s.photos.Commit(prepared, oldPath, fullName, req.IDCard)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if newPath != oldPath {
			if _, err = s.repo.UpdateClientPicture(ctx, id, newPath); err != nil {
				return nil, err
			}
		}
	}

	s.log.Info("updated client", slog.Int("id", id))
	return s.repo.ReadClient(ctx, id)
}

// discard удаляет файл фотографии, который не попал в базу.
func (s *ClientService) discard(op, path string) {
	if path == "" {
		return
	}
	if err := s.photos.Discard(path); err != nil {
		s.log.Warn("failed to discard picture", sl.Op(op), slog.String("path", path), sl.Err(err))
	}
}

// ChangeRole меняет роль клиента.
func (s *ClientService) ChangeRole(ctx context.Context, id int, role string) error {
	const op = "clients.ChangeRole"

	r := models.Role(role)
	if !r.Valid() {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidRole)
	}
	count, err := s.repo.UpdateClientRole(ctx, id, r)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrClientNotFound)
	}
	return nil
}

// Get возвращает клиента по ID.
func (s *ClientService) Get(ctx context.Context, id int) (*models.Client, error) {
	return s.repo.ReadClient(ctx, id)
}

// List возвращает клиентов по фильтру поиска.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error) {
	return s.repo.ListClients(ctx, filter)
}

// AccessStatus вычисляет доступ клиента в зал на сегодня:
// allowed, если самый поздний абонемент заканчивается сегодня или позже.
func (s *ClientService) AccessStatus(ctx context.Context, id int) (*models.AccessStatus, error) {
	if _, err := s.repo.ReadClient(ctx, id); err != nil {
		return nil, err
	}
	latest, err := s.repo.LatestMembershipEnd(ctx, id)
	if err != nil {
		return nil, err
	}
	return Status(id, latest, s.now()), nil
}

// Status строит статус доступа по последней дате окончания абонементов.
// Сравниваются только даты: абонемент действует включительно до дня окончания.
func Status(clientID int, latestEnd *time.Time, now time.Time) *models.AccessStatus {
	st := &models.AccessStatus{
		ClientID:  clientID,
		Status:    models.StatusNotAllowed,
		LatestEnd: latestEnd,
	}
	if latestEnd != nil && month.Format(*latestEnd) >= month.Format(now) {
		st.Allowed = true
		st.Status = models.StatusAllowed
	}
	return st
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
