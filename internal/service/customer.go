package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/velora/beauty-orders-api/internal/dto"
	"github.com/velora/beauty-orders-api/internal/model"
	"github.com/velora/beauty-orders-api/internal/repository"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrDuplicateEmail      = errors.New("email already in use")
	ErrCustomerHasOrders   = errors.New("cannot delete customer with existing orders")
	ErrInvalidCustomerType = errors.New("type must be hotel, hairdresser, or pharmacy")
)

type CustomerService struct {
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository, orderRepo repository.OrderRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, orderRepo: orderRepo}
}

func (s *CustomerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	customerType := model.CustomerType(req.Type)
	if !customerType.Valid() {
		return nil, ErrInvalidCustomerType
	}

	customer := &model.Customer{
		Name:    req.Name,
		Type:    customerType,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		TaxID:   req.TaxID,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	resp := toCustomerResponse(customer)
	return &resp, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	resp := toCustomerResponse(customer)
	return &resp, nil
}

func (s *CustomerService) List(ctx context.Context, req dto.ListCustomersRequest) ([]dto.CustomerResponse, error) {
	if req.Type != "" && !model.CustomerType(req.Type).Valid() {
		return nil, ErrInvalidCustomerType
	}
	customers, err := s.customerRepo.List(ctx, req.Limit, req.Offset, req.Type)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return toCustomerResponses(customers), nil
}

func (s *CustomerService) Search(ctx context.Context, term string) ([]dto.CustomerResponse, error) {
	customers, err := s.customerRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return toCustomerResponses(customers), nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	if req.Type != nil {
		customerType := model.CustomerType(*req.Type)
		if !customerType.Valid() {
			return nil, ErrInvalidCustomerType
		}
		customer.Type = customerType
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.TaxID != nil {
		customer.TaxID = req.TaxID
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	resp := toCustomerResponse(customer)
	return &resp, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return ErrCustomerNotFound
		}
		if errors.Is(err, repository.ErrRestricted) {
			return ErrCustomerHasOrders
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *CustomerService) Orders(ctx context.Context, id uuid.UUID) ([]model.Order, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return s.orderRepo.ListByCustomer(ctx, id)
}

func (s *CustomerService) Stats(ctx context.Context, id uuid.UUID) (*dto.CustomerStatsResponse, error) {
	stats, err := s.customerRepo.Stats(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customer stats: %w", err)
	}
	return stats, nil
}

func (s *CustomerService) CountByType(ctx context.Context) ([]dto.CustomerTypeStats, error) {
	return s.customerRepo.CountByType(ctx)
}

func toCustomerResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxID:     c.TaxID,
		CreatedAt: c.CreatedAt,
	}
}

func toCustomerResponses(customers []model.Customer) []dto.CustomerResponse {
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, toCustomerResponse(&customers[i]))
	}
	return items
}
