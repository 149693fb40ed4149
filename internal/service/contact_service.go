package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wedding-dream/messaging-service/internal/domain"
)

type ContactRepo interface {
	Create(ctx context.Context, c *domain.ContactRequest) error
}

var (
	ErrContactInvalid = errors.New("invalid contact request")
)

// ContactService — анонимные заявки «связаться по листингу» без треда.
type ContactService struct {
	contacts ContactRepo
	listings ListingRepo
}

func NewContactService(contacts ContactRepo, listings ListingRepo) *ContactService {
	return &ContactService{contacts: contacts, listings: listings}
}

func (s *ContactService) Create(ctx context.Context, listingID int64, name, emailOrPhone, message string) (*domain.ContactRequest, error) {
	name = strings.TrimSpace(name)
	emailOrPhone = strings.TrimSpace(emailOrPhone)
	message = strings.TrimSpace(message)
	if name == "" || len(name) > 120 ||
		emailOrPhone == "" || len(emailOrPhone) > 255 ||
		message == "" {
		return nil, ErrContactInvalid
	}

	exists, err := s.listings.Exists(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("listings.Exists: %w", err)
	}
	if !exists {
		return nil, domain.ErrListingNotFound
	}

	c := &domain.ContactRequest{
		ListingID:    listingID,
		Name:         name,
		EmailOrPhone: emailOrPhone,
		Message:      message,
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("contacts.Create: %w", err)
	}
	return c, nil
}
