package registry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"domainintel/pkg/logger"
	"domainintel/pkg/registry"
	mockregistry "domainintel/pkg/registry/mock"
	"domainintel/pkg/serrors"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func newSource(ctrl *gomock.Controller, name string) *mockregistry.MockClient {
	src := mockregistry.NewMockClient(ctrl)
	src.EXPECT().Name().Return(name).AnyTimes()

	return src
}

func newParallel(t *testing.T, sources ...registry.Client) *registry.Parallel {
	t.Helper()
	p, err := registry.NewParallel(noop.NewMeterProvider().Meter("test"), sources...)
	require.NoError(t, err)

	return p
}

func TestParallel_MergesByPriority(t *testing.T) {
	ctrl := gomock.NewController(t)
	rdap := newSource(ctrl, "rdap")
	whois := newSource(ctrl, "whois")
	dns := newSource(ctrl, "dns")

	// rdap only knows the date, whois knows both, dns knows the registrar
	rdap.EXPECT().Lookup(gomock.Any(), "example.com").
		Return(&registry.Registration{Domain: "example.com", CreatedAt: "1995-08-14T04:00:00Z", Source: "rdap"}, nil)
	whois.EXPECT().Lookup(gomock.Any(), "example.com").
		Return(&registry.Registration{Domain: "example.com", Registrar: "RESERVED-IANA", CreatedAt: "1995-08-14", Source: "whois"}, nil)
	dns.EXPECT().Lookup(gomock.Any(), "example.com").
		Return(&registry.Registration{Domain: "example.com", Registrar: "Cloudflare", Source: "dns"}, nil)

	reg, err := newParallel(t, rdap, whois, dns).Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, &registry.Registration{
		Domain:    "example.com",
		Registrar: "RESERVED-IANA",
		CreatedAt: "1995-08-14T04:00:00Z",
		Source:    "rdap+whois",
	}, reg)
}

func TestParallel_FailingSourceIsIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	rdap := newSource(ctrl, "rdap")
	dns := newSource(ctrl, "dns")

	rdap.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
	dns.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		Return(&registry.Registration{Registrar: "Namecheap", Source: "dns"}, nil)

	reg, err := newParallel(t, rdap, dns).Lookup(context.Background(), "example.net")
	require.NoError(t, err)
	require.Equal(t, "Namecheap", reg.Registrar)
	require.Empty(t, reg.CreatedAt)
	require.Equal(t, "dns", reg.Source)
	require.Equal(t, "example.net", reg.Domain)
}

func TestParallel_AllFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	rdap := newSource(ctrl, "rdap")
	whois := newSource(ctrl, "whois")

	boom := errors.New("boom")
	rdap.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, boom)
	whois.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, serrors.KindOnly(serrors.ErrNotFound))

	reg, err := newParallel(t, rdap, whois).Lookup(context.Background(), "nothing.test")
	require.Nil(t, reg)
	require.ErrorIs(t, err, serrors.ErrNotFound)
	require.ErrorIs(t, err, boom)
}

func TestParallel_RunsConcurrently(t *testing.T) {
	ctrl := gomock.NewController(t)
	slow := func(name string) *mockregistry.MockClient {
		src := newSource(ctrl, name)
		src.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, string) (*registry.Registration, error) {
				time.Sleep(100 * time.Millisecond)

				return &registry.Registration{Registrar: name}, nil
			})

		return src
	}

	start := time.Now()
	_, err := newParallel(t, slow("a"), slow("b"), slow("c")).Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestParallel_Name(t *testing.T) {
	ctrl := gomock.NewController(t)
	require.Equal(t, "rdap+whois", newParallel(t, newSource(ctrl, "rdap"), newSource(ctrl, "whois")).Name())
}

func TestCached_Hit(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := newSource(ctrl, "rdap")
	cache := mockregistry.NewMockCache(ctrl)

	cached := &registry.Registration{Domain: "example.com", Registrar: "GoDaddy", Source: "rdap"}
	cache.EXPECT().Get(gomock.Any(), "example.com").Return(cached, nil)
	next.EXPECT().Lookup(gomock.Any(), gomock.Any()).Times(0)

	reg, err := registry.NewCached(next, cache, time.Hour).Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, cached, reg)
}

func TestCached_MissStoresResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := newSource(ctrl, "rdap")
	cache := mockregistry.NewMockCache(ctrl)

	fresh := &registry.Registration{Domain: "example.com", Registrar: "GoDaddy", Source: "rdap"}
	cache.EXPECT().Get(gomock.Any(), "example.com").Return(nil, nil)
	next.EXPECT().Lookup(gomock.Any(), "example.com").Return(fresh, nil)
	cache.EXPECT().Set(gomock.Any(), fresh, 2*time.Hour).Return(nil)

	reg, err := registry.NewCached(next, cache, 2*time.Hour).Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, fresh, reg)
}

func TestCached_CacheFailuresDegrade(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := newSource(ctrl, "rdap")
	cache := mockregistry.NewMockCache(ctrl)

	fresh := &registry.Registration{Domain: "example.com", CreatedAt: "2001-01-01"}
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	next.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(fresh, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	reg, err := registry.NewCached(next, cache, time.Hour).Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, fresh, reg)
}

func TestCached_LookupErrorNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := newSource(ctrl, "rdap")
	cache := mockregistry.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	next.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, serrors.KindOnly(serrors.ErrNotFound))
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := registry.NewCached(next, cache, time.Hour).Lookup(context.Background(), "example.com")
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestCanonicalRegistrar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GoDaddy.com, LLC", "GoDaddy"},
		{"Wild West Domains, LLC", "GoDaddy"},
		{"NameCheap, Inc.", "Namecheap"},
		{"Google LLC", "Google Domains"},
		{"Cloudflare, Inc.", "Cloudflare"},
		{"Amazon Registrar, Inc.", "Amazon"},
		{"MarkMonitor Inc.", "MarkMonitor Inc."},
		{"  Network Solutions, LLC ", "Network Solutions"},
		{"", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, registry.CanonicalRegistrar(tt.in), "input %q", tt.in)
	}
}
