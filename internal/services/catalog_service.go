package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/repositories"
)

const catalogCachePrefix = "catalog:"

type CatalogServiceInterface interface {
	Catalog(ctx context.Context) (*dto.CatalogDTO, error)
	Factories(ctx context.Context) ([]entities.Factory, error)
	Sections(ctx context.Context, factoryID uint64) ([]entities.FactorySection, error)
	MachinesBySection(ctx context.Context, sectionID uint64) ([]entities.Machine, error)
	Departments(ctx context.Context) ([]entities.Department, error)
	Statuses(ctx context.Context) ([]entities.Status, error)
	Parts(ctx context.Context, search string) ([]entities.Part, error)
	Invalidate(ctx context.Context, keys ...string) error
}

// CatalogService читает справочники через кеш (cache-aside). Ошибка кеша не ломает запрос:
// она логируется, а данные берутся из базы.
type CatalogService struct {
	cache          repositories.CacheRepositoryInterface
	factoryRepo    repositories.FactoryRepositoryInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	statusRepo     repositories.StatusRepositoryInterface
	partRepo       repositories.PartRepositoryInterface
	machineRepo    repositories.MachineRepositoryInterface
	ttl            time.Duration
	logger         *zap.Logger
}

func NewCatalogService(
	cache repositories.CacheRepositoryInterface,
	factoryRepo repositories.FactoryRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	statusRepo repositories.StatusRepositoryInterface,
	partRepo repositories.PartRepositoryInterface,
	machineRepo repositories.MachineRepositoryInterface,
	ttl time.Duration,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		cache:          cache,
		factoryRepo:    factoryRepo,
		departmentRepo: departmentRepo,
		statusRepo:     statusRepo,
		partRepo:       partRepo,
		machineRepo:    machineRepo,
		ttl:            ttl,
		logger:         logger,
	}
}

func cacheAside[T any](ctx context.Context, s *CatalogService, key string, load func(ctx context.Context) (T, error)) (T, error) {
	key = catalogCachePrefix + key

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			return value, nil
		}
		s.logger.Warn("Повреждённое значение в кеше справочника", zap.String("key", key))
	} else if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("Кеш справочников недоступен, читаем из БД", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if payload, err := json.Marshal(value); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.logger.Warn("Не удалось записать справочник в кеш", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

func (s *CatalogService) Catalog(ctx context.Context) (*dto.CatalogDTO, error) {
	factories, err := s.Factories(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := s.Departments(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := s.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	out := &dto.CatalogDTO{
		Factories:   make([]dto.ShortFactoryDTO, 0, len(factories)),
		Departments: make([]dto.ShortDTO, 0, len(departments)),
		Statuses:    make([]dto.ShortDTO, 0, len(statuses)),
	}
	for _, f := range factories {
		out.Factories = append(out.Factories, dto.ShortFactoryDTO{ID: f.ID, Name: f.Name, Abbreviation: f.Abbreviation})
	}
	for _, d := range departments {
		out.Departments = append(out.Departments, dto.ShortDTO{ID: d.ID, Name: d.Name})
	}
	for _, st := range statuses {
		out.Statuses = append(out.Statuses, dto.ShortDTO{ID: st.ID, Name: st.Name})
	}
	return out, nil
}

func (s *CatalogService) Factories(ctx context.Context) ([]entities.Factory, error) {
	return cacheAside(ctx, s, "factories", s.factoryRepo.GetFactories)
}

func (s *CatalogService) Sections(ctx context.Context, factoryID uint64) ([]entities.FactorySection, error) {
	return cacheAside(ctx, s, fmt.Sprintf("sections:%d", factoryID), func(ctx context.Context) ([]entities.FactorySection, error) {
		return s.factoryRepo.GetSections(ctx, factoryID)
	})
}

// MachinesBySection не кешируется: is_running меняется при открытии станка.
func (s *CatalogService) MachinesBySection(ctx context.Context, sectionID uint64) ([]entities.Machine, error) {
	return s.machineRepo.MachinesBySection(ctx, sectionID)
}

func (s *CatalogService) Departments(ctx context.Context) ([]entities.Department, error) {
	return cacheAside(ctx, s, "departments", s.departmentRepo.GetDepartments)
}

func (s *CatalogService) Statuses(ctx context.Context) ([]entities.Status, error) {
	return cacheAside(ctx, s, "statuses", s.statusRepo.GetStatuses)
}

func (s *CatalogService) Parts(ctx context.Context, search string) ([]entities.Part, error) {
	if search != "" {
		return s.partRepo.GetParts(ctx, search)
	}
	return cacheAside(ctx, s, "parts", func(ctx context.Context) ([]entities.Part, error) {
		return s.partRepo.GetParts(ctx, "")
	})
}

// Invalidate удаляет ключи справочников (без префикса), например "factories" или "sections:1".
func (s *CatalogService) Invalidate(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, catalogCachePrefix+k)
	}
	return s.cache.Del(ctx, full...)
}
