package app

import (
	"fmt"

	keywrapHTTP "github.com/allisson/keywrapper/internal/keywrap/http"
	keywrapService "github.com/allisson/keywrapper/internal/keywrap/service"
	keywrapUseCase "github.com/allisson/keywrapper/internal/keywrap/usecase"
)

// KMSService returns the service used to open KMS keepers.
func (c *Container) KMSService() keywrapService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = keywrapService.NewKMSService()
	})
	return c.kmsService
}

// KeySealer returns the descriptor sealer. Without KMSKeyURI the sealer is disabled.
func (c *Container) KeySealer() (*keywrapService.KeySealer, error) {
	var err error
	c.keySealerInit.Do(func() {
		c.keySealer, err = c.initKeySealer()
		if err != nil {
			c.initErrors["keySealer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keySealer"]; exists {
		return nil, storedErr
	}
	return c.keySealer, nil
}

// WrapperManager returns the manager holding the current codec with legacy fallback.
func (c *Container) WrapperManager() keywrapService.WrapperManager {
	c.wrapperManagerInit.Do(func() {
		c.wrapperManager = c.initWrapperManager()
	})
	return c.wrapperManager
}

// KeyWrapUseCase returns the key wrap use case, wrapped with metrics when enabled.
func (c *Container) KeyWrapUseCase() (keywrapUseCase.KeyWrapUseCase, error) {
	var err error
	c.keyWrapUseCaseInit.Do(func() {
		c.keyWrapUseCase, err = c.initKeyWrapUseCase()
		if err != nil {
			c.initErrors["keyWrapUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyWrapUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyWrapUseCase, nil
}

// KeyWrapHandler returns the key wrap HTTP handler.
func (c *Container) KeyWrapHandler() (*keywrapHTTP.KeyWrapHandler, error) {
	var err error
	c.keyWrapHandlerInit.Do(func() {
		c.keyWrapHandler, err = c.initKeyWrapHandler()
		if err != nil {
			c.initErrors["keyWrapHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyWrapHandler"]; exists {
		return nil, storedErr
	}
	return c.keyWrapHandler, nil
}

func (c *Container) initKeySealer() (*keywrapService.KeySealer, error) {
	if c.config.KMSKeyURI == "" {
		return keywrapService.NewKeySealer(nil), nil
	}

	keeper, err := c.KMSService().OpenKeeper(c.ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	return keywrapService.NewKeySealer(keeper), nil
}

func (c *Container) initWrapperManager() keywrapService.WrapperManager {
	legacy := keywrapService.NewRawKeyWrapper(nil)
	return keywrapService.NewWrapperManager(keywrapService.NewAES256CBCSHA256KeyWrapper(nil, legacy))
}

func (c *Container) initKeyWrapUseCase() (keywrapUseCase.KeyWrapUseCase, error) {
	sealer, err := c.KeySealer()
	if err != nil {
		return nil, fmt.Errorf("failed to get key sealer for keywrap use case: %w", err)
	}

	baseUseCase := keywrapUseCase.NewKeyWrapUseCase(
		c.WrapperManager(),
		sealer,
		c.Logger(),
		c.config.MaxPlaintextBytes,
		c.config.RewrapConcurrency,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for keywrap use case: %w", err)
		}
		return keywrapUseCase.NewKeyWrapUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initKeyWrapHandler() (*keywrapHTTP.KeyWrapHandler, error) {
	useCase, err := c.KeyWrapUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get keywrap use case for handler: %w", err)
	}
	return keywrapHTTP.NewKeyWrapHandler(useCase, c.Logger()), nil
}
