package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/ports"
)

// IdentityKind tags how the live identity was established.
type IdentityKind string

const (
	IdentityAuthenticated IdentityKind = "authenticated"
	IdentityGuest         IdentityKind = "guest"
	IdentityDevelopment   IdentityKind = "development"
)

// BootstrapResult is the outcome of the startup sequence.
type BootstrapResult struct {
	Kind IdentityKind `json:"kind"`
	User domain.User  `json:"user"`
}

// Bootstrapper runs the one-shot startup sequence: establish an identity
// (real or fallback), then load the catalog and order list through the store.
type Bootstrapper struct {
	store         *StoreService
	adminUsername string
	development   bool
	log           zerolog.Logger

	once   sync.Once
	result BootstrapResult
}

func NewBootstrapper(store *StoreService, adminUsername string, development bool, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{
		store:         store,
		adminUsername: adminUsername,
		development:   development,
		log:           log,
	}
}

// Run executes the bootstrap sequence exactly once per process; later calls
// return the first result. Failures never propagate: any error in the
// identity or load chain degrades to the guest identity so the app stays
// usable in a catalog-less state instead of blocking.
func (b *Bootstrapper) Run(ctx context.Context, host *ports.HostIdentity) BootstrapResult {
	b.once.Do(func() {
		b.result = b.run(ctx, host)
	})
	return b.result
}

// Result returns the outcome of the first Run. Zero value before Run.
func (b *Bootstrapper) Result() BootstrapResult {
	return b.result
}

func (b *Bootstrapper) run(ctx context.Context, host *ports.HostIdentity) BootstrapResult {
	// The loading phase completes on every path so dependent UI is never
	// stuck in a perpetual loading state.
	defer b.store.markReady()

	if host == nil {
		if b.development {
			dev := domain.User{ID: 1, Username: "dev"}
			b.store.SetUser(dev)
			b.log.Info().Msg("no host identity, using development user")
			return BootstrapResult{Kind: IdentityDevelopment, User: dev}
		}
		return b.fallbackToGuest(nil)
	}

	username := host.Username
	if username == "" {
		username = fmt.Sprintf("user_%d", host.ID)
	}
	isAdmin := b.adminUsername != "" && username == b.adminUsername

	user, err := b.store.gateway.GetOrCreateUser(ctx, ports.UserUpsertInput{
		ID:       host.ID,
		Username: username,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		return b.fallbackToGuest(err)
	}
	b.store.SetUser(*user)

	if err := b.store.refreshCatalog(ctx); err != nil {
		return b.fallbackToGuest(err)
	}
	if err := b.store.refreshOrders(ctx); err != nil {
		return b.fallbackToGuest(err)
	}

	b.log.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Bool("is_admin", user.IsAdmin).
		Msg("bootstrap complete")

	return BootstrapResult{Kind: IdentityAuthenticated, User: *user}
}

func (b *Bootstrapper) fallbackToGuest(cause error) BootstrapResult {
	guest := domain.Guest()
	b.store.SetUser(guest)
	evt := b.log.Warn()
	if cause != nil {
		evt = evt.Err(cause)
	}
	evt.Msg("bootstrap degraded to guest identity")
	return BootstrapResult{Kind: IdentityGuest, User: guest}
}
