package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Customer is the part of the customer master the engine reads: identity for
// quote search, tier and region for the advanced calculation.
type Customer struct {
	ID             uuid.UUID    `json:"id"`
	CustomerNumber string       `json:"customer_number"`
	Name           string       `json:"name"`
	Email          *string      `json:"email,omitempty"`
	Company        *string      `json:"company,omitempty"`
	Tier           CustomerTier `json:"tier"`
	Region         *string      `json:"region,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NewCustomerInput is the input of CustomerService.CreateCustomer.
type NewCustomerInput struct {
	Name    string       `json:"name" validate:"required,max=200"`
	Email   *string      `json:"email" validate:"omitempty,email"`
	Company *string      `json:"company" validate:"omitempty,max=200"`
	Tier    CustomerTier `json:"tier" validate:"omitempty,oneof=retail contractor dealer wholesale"`
	Region  *string      `json:"region" validate:"omitempty,max=8"`
}

// CustomerService allocates customer numbers and reads customers.
type CustomerService interface {
	CreateCustomer(ctx context.Context, in NewCustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
}

type customerService struct {
	pool *pgxpool.Pool
	seq  SequenceGenerator
	now  func() time.Time
}

func NewCustomerService(pool *pgxpool.Pool, seq SequenceGenerator) CustomerService {
	return &customerService{pool: pool, seq: seq, now: time.Now}
}

func (s *customerService) CreateCustomer(ctx context.Context, in NewCustomerInput) (*Customer, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Tier == "" {
		in.Tier = TierRetail
	}
	if in.Region != nil {
		r := strings.ToUpper(strings.TrimSpace(*in.Region))
		in.Region = &r
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := s.seq.Next(ctx, tx, CustomerNumbers, s.now().Year())
	if err != nil {
		return nil, err
	}

	var c Customer
	err = tx.QueryRow(ctx, `
		INSERT INTO customers (id, customer_number, name, email, company, tier, region)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, customer_number, name, email, company, tier, region, created_at
	`, uuid.New(), number, strings.TrimSpace(in.Name), in.Email, in.Company, in.Tier, in.Region).Scan(
		&c.ID, &c.CustomerNumber, &c.Name, &c.Email, &c.Company, &c.Tier, &c.Region, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit customer creation: %w", err)
	}
	return &c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, customer_number, name, email, company, tier, region, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.CustomerNumber, &c.Name, &c.Email, &c.Company, &c.Tier, &c.Region, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", id, err)
	}
	return &c, nil
}
