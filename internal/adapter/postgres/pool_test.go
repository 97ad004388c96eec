package postgres_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/featureflags-backend/internal/adapter/postgres"
	"github.com/heartmarshall/featureflags-backend/internal/adapter/postgres/testhelper"
)

func TestPoolCollector(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	require.NoError(t, pool.Ping(context.Background()))

	c := postgres.NewPoolCollector(pool)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	assert.Equal(t, 6, testutil.CollectAndCount(c))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64, len(families))
	for _, f := range families {
		m := f.GetMetric()[0]
		if g := m.GetGauge(); g != nil {
			values[f.GetName()] = g.GetValue()
		} else {
			values[f.GetName()] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, float64(pool.Config().MaxConns), values["featureflags_db_pool_max_conns"])
	assert.GreaterOrEqual(t, values["featureflags_db_pool_conns"], float64(1))
	assert.GreaterOrEqual(t, values["featureflags_db_pool_acquires_total"], float64(1))
}
