package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantRadar/internal/config"
	"GrantRadar/internal/connector"
	"GrantRadar/internal/domain"
)

type stubConnector struct {
	name  string
	items []domain.RawItem
	err   error
}

func (s stubConnector) Name() string { return s.name }

func (s stubConnector) Fetch(context.Context, connector.Source) ([]domain.RawItem, error) {
	return s.items, s.err
}

func TestFetchAllPreservesSourceOrder(t *testing.T) {
	t.Parallel()

	reg := connector.NewRegistry()
	reg.Register(stubConnector{name: "api", items: []domain.RawItem{
		{SourceID: "api-1"}, {SourceID: "api-2"},
	}})
	reg.Register(stubConnector{name: "feed", items: []domain.RawItem{
		{SourceID: "feed-1"},
	}})

	multi := NewMultiSource(reg, []config.SourceConfig{
		{ID: "kstartup", Connector: "api"},
		{ID: "knowhow", Connector: "feed"},
	}, nil)

	items, err := multi.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "api-1", items[0].SourceID)
	assert.Equal(t, "api-2", items[1].SourceID)
	assert.Equal(t, "feed-1", items[2].SourceID)
}

func TestFetchAllLabelsItemsWithSourceID(t *testing.T) {
	t.Parallel()

	reg := connector.NewRegistry()
	reg.Register(stubConnector{name: "api", items: []domain.RawItem{
		{SourceID: "x-1"},
		{SourceID: "x-2", Source: "already-set"},
	}})

	multi := NewMultiSource(reg, []config.SourceConfig{{ID: "kstartup", Connector: "api"}}, nil)

	items, err := multi.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kstartup", items[0].Source)
	assert.Equal(t, "already-set", items[1].Source, "connector-assigned labels win")
}

func TestFetchAllSkipsUnknownConnector(t *testing.T) {
	t.Parallel()

	reg := connector.NewRegistry()
	reg.Register(stubConnector{name: "feed", items: []domain.RawItem{{SourceID: "f-1"}}})

	multi := NewMultiSource(reg, []config.SourceConfig{
		{ID: "mystery", Connector: "nonexistent"},
		{ID: "knowhow", Connector: "feed"},
	}, nil)

	items, err := multi.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "f-1", items[0].SourceID)
}

func TestFetchAllContinuesPastFailingSource(t *testing.T) {
	t.Parallel()

	reg := connector.NewRegistry()
	reg.Register(stubConnector{name: "broken", err: errors.New("upstream down")})
	reg.Register(stubConnector{name: "feed", items: []domain.RawItem{{SourceID: "f-1"}}})

	multi := NewMultiSource(reg, []config.SourceConfig{
		{ID: "flaky", Connector: "broken"},
		{ID: "knowhow", Connector: "feed"},
	}, nil)

	items, err := multi.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFetchAllPropagatesCancellation(t *testing.T) {
	t.Parallel()

	reg := connector.NewRegistry()
	reg.Register(stubConnector{name: "canceled", err: context.Canceled})

	multi := NewMultiSource(reg, []config.SourceConfig{{ID: "kstartup", Connector: "canceled"}}, nil)

	_, err := multi.FetchAll(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = multi.FetchAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
