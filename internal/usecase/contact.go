package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/internal/domain"
)

// ContactRepository defines persistence for contact submissions.
type ContactRepository interface {
	Create(ctx context.Context, sub domain.ContactSubmission) (domain.ContactSubmission, error)
	List(ctx context.Context) ([]domain.ContactSubmission, error)
	SetRead(ctx context.Context, id string, read bool) error
	Delete(ctx context.Context, id string) error
}

// SubmitInput is the decoded public contact form payload.
type SubmitInput struct {
	Name    string `validate:"required,min=2"`
	Email   string `validate:"required,email"`
	Subject string
	Message string `validate:"required,min=5"`
	Consent bool
}

type ContactUsecase struct {
	repo       ContactRepository
	validate   *validator.Validate
	revalidate Revalidator
}

func NewContactUsecase(repo ContactRepository, revalidate Revalidator) *ContactUsecase {
	return &ContactUsecase{
		repo:       repo,
		validate:   validator.New(),
		revalidate: revalidate,
	}
}

// Submit fails closed: nothing invalid or non-consenting is ever stored.
func (uc *ContactUsecase) Submit(ctx context.Context, input SubmitInput) (domain.ContactSubmission, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)

	if !input.Consent {
		return domain.ContactSubmission{}, domain.ValidationError{Field: "consent", Reason: "consent is required"}
	}
	if err := uc.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return domain.ContactSubmission{}, domain.ValidationError{
				Field:  strings.ToLower(first.Field()),
				Reason: "failed " + first.Tag() + " check",
			}
		}
		return domain.ContactSubmission{}, domain.ValidationError{Reason: err.Error()}
	}

	created, err := uc.repo.Create(ctx, domain.ContactSubmission{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
		Consent: input.Consent,
	})
	if err != nil {
		return domain.ContactSubmission{}, err
	}

	uc.revalidate.ContentChanged(ctx, folio.EventTypeContactCreated, "contact", created.ID)
	return created, nil
}

func (uc *ContactUsecase) List(ctx context.Context) ([]domain.ContactSubmission, error) {
	return uc.repo.List(ctx)
}

// ToggleRead inverts the caller-supplied presumed current state.
func (uc *ContactUsecase) ToggleRead(ctx context.Context, id string, currentIsRead bool) error {
	return uc.repo.SetRead(ctx, id, !currentIsRead)
}

// Delete tolerates retries of an already deleted id.
func (uc *ContactUsecase) Delete(ctx context.Context, id string) error {
	err := uc.repo.Delete(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
