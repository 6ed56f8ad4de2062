// Package drink implements the drink use cases. Each use case checks the
// caller's permission first, then runs its storage work in one transaction.
package drink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/model"
	"github.com/jamesprial/coffee-shop/internal/oauth"
	"github.com/jamesprial/coffee-shop/internal/policy"
)

// Authorizer checks that an Authorization header grants a permission.
// *oauth.Gate implements it.
type Authorizer interface {
	Require(ctx context.Context, authorization, permission string) (*oauth.Claims, error)
}

// Repository is the storage the use cases run against.
// *store.DrinkRepository implements it.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListAll(ctx context.Context) ([]*model.Drink, error)
	FindByID(ctx context.Context, id int64) (*model.Drink, bool, error)
	Create(ctx context.Context, title string, recipe model.Recipe) (*model.Drink, error)
	Update(ctx context.Context, d *model.Drink) error
	Delete(ctx context.Context, d *model.Drink) error
}

// Decoder reads a request body into v. *json.Decoder implements it.
type Decoder interface {
	Decode(v any) error
}

// Input is the request body of create and update. A nil field was absent
// or null.
type Input struct {
	Title  *string       `json:"title"`
	Recipe *model.Recipe `json:"recipe"`
}

// Service runs the drink use cases.
type Service struct {
	auth   Authorizer
	repo   Repository
	policy *policy.Policy
	logger *slog.Logger
}

// NewService creates a Service. A nil policy uses policy.Default and a nil
// logger uses slog.Default.
func NewService(auth Authorizer, repo Repository, p *policy.Policy, logger *slog.Logger) *Service {
	if auth == nil {
		panic("drink: authorizer cannot be nil")
	}
	if repo == nil {
		panic("drink: repository cannot be nil")
	}
	if p == nil {
		p = policy.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{auth: auth, repo: repo, policy: p, logger: logger}
}

// authorize applies rule. Public rules admit every caller.
func (s *Service) authorize(ctx context.Context, authorization string, rule policy.Rule) (*oauth.Claims, error) {
	if rule.Public {
		return nil, nil
	}
	return s.auth.Require(ctx, authorization, rule.Permission)
}

// List returns the short projection of every drink.
func (s *Service) List(ctx context.Context, authorization string) ([]model.ShortDrink, error) {
	if _, err := s.authorize(ctx, authorization, s.policy.List); err != nil {
		return nil, err
	}

	drinks, err := s.listAll(ctx)
	if err != nil {
		return nil, translate("list drinks", err)
	}

	out := make([]model.ShortDrink, 0, len(drinks))
	for _, d := range drinks {
		out = append(out, d.Short())
	}
	return out, nil
}

// Detail returns the long projection of every drink.
func (s *Service) Detail(ctx context.Context, authorization string) ([]model.LongDrink, error) {
	if _, err := s.authorize(ctx, authorization, s.policy.Detail); err != nil {
		return nil, err
	}

	drinks, err := s.listAll(ctx)
	if err != nil {
		return nil, translate("list drinks", err)
	}

	out := make([]model.LongDrink, 0, len(drinks))
	for _, d := range drinks {
		out = append(out, d.Long())
	}
	return out, nil
}

func (s *Service) listAll(ctx context.Context) ([]*model.Drink, error) {
	var drinks []*model.Drink
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		drinks, err = s.repo.ListAll(ctx)
		return err
	})
	return drinks, err
}

// Create decodes a drink from body and stores it. Both title and recipe
// are required.
func (s *Service) Create(ctx context.Context, authorization string, body Decoder) (model.LongDrink, error) {
	claims, err := s.authorize(ctx, authorization, s.policy.Create)
	if err != nil {
		return model.LongDrink{}, err
	}

	in, err := decode(body)
	if err != nil {
		return model.LongDrink{}, err
	}
	if in.Title == nil {
		return model.LongDrink{}, ierrors.NewBadRequestError("title is required", nil)
	}
	if in.Recipe == nil {
		return model.LongDrink{}, ierrors.NewBadRequestError("recipe is required", nil)
	}

	candidate := &model.Drink{Title: *in.Title, Recipe: *in.Recipe}
	if err := candidate.Validate(); err != nil {
		return model.LongDrink{}, ierrors.NewBadRequestError(err.Error(), err)
	}

	var created *model.Drink
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, candidate.Title, candidate.Recipe)
		return err
	})
	if err != nil {
		return model.LongDrink{}, translate("create drink", err)
	}

	s.logger.InfoContext(ctx, "drink created", "id", created.ID, "title", created.Title, "subject", subject(claims))
	return created.Long(), nil
}

// Update applies the fields present in body to drink id. Absent and null
// fields keep their stored values.
func (s *Service) Update(ctx context.Context, authorization string, id int64, body Decoder) (model.LongDrink, error) {
	claims, err := s.authorize(ctx, authorization, s.policy.Update)
	if err != nil {
		return model.LongDrink{}, err
	}

	in, err := decode(body)
	if err != nil {
		return model.LongDrink{}, err
	}

	var updated *model.Drink
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.find(ctx, id)
		if err != nil {
			return err
		}

		// The loaded drink is left untouched until the write succeeds.
		next := current.Clone()
		if in.Title != nil {
			next.Title = *in.Title
		}
		if in.Recipe != nil {
			next.Recipe = in.Recipe.Clone()
		}
		if err := next.Validate(); err != nil {
			return ierrors.NewBadRequestError(err.Error(), err)
		}

		if err := s.repo.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return model.LongDrink{}, translate("update drink", err)
	}

	s.logger.InfoContext(ctx, "drink updated", "id", updated.ID, "title", updated.Title, "subject", subject(claims))
	return updated.Long(), nil
}

// Delete removes drink id.
func (s *Service) Delete(ctx context.Context, authorization string, id int64) error {
	claims, err := s.authorize(ctx, authorization, s.policy.Delete)
	if err != nil {
		return err
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, current)
	})
	if err != nil {
		return translate("delete drink", err)
	}

	s.logger.InfoContext(ctx, "drink deleted", "id", id, "subject", subject(claims))
	return nil
}

func (s *Service) find(ctx context.Context, id int64) (*model.Drink, error) {
	d, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ierrors.NewNotFoundError("drink", id)
	}
	return d, nil
}

func decode(body Decoder) (*Input, error) {
	if body == nil {
		return nil, ierrors.NewBadRequestError("request body is required", nil)
	}
	var in Input
	if err := body.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ierrors.NewBadRequestError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
		}
		return nil, ierrors.NewBadRequestError("request body is not a valid drink", err)
	}
	return &in, nil
}

// translate maps a use case failure onto the API error kinds. Typed API
// errors pass through; storage failures become 422 and anything else 400.
func translate(action string, err error) error {
	var (
		authErr  *ierrors.AuthError
		badReq   *ierrors.BadRequestError
		notFound *ierrors.NotFoundError
	)
	switch {
	case errors.As(err, &authErr), errors.As(err, &badReq), errors.As(err, &notFound):
		return err
	case ierrors.IsStorage(err):
		return ierrors.NewUnprocessableError(err)
	default:
		return ierrors.NewBadRequestError("unable to "+action, err)
	}
}

func subject(claims *oauth.Claims) string {
	if claims == nil {
		return ""
	}
	return claims.Subject
}
