package durability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pathwise/internal/generation"
	"pathwise/internal/metrics"
)

func TestEstimate_ProviderValue(t *testing.T) {
	client := generation.NewScriptedClient().
		On(generation.TaskSkillDurability, generation.ReplyRaw(`{"years": 7.25}`))

	got := New(client, Config{}, nil).Estimate(context.Background(), "negotiation", "Account Manager", "")

	assert.Equal(t, 7.25, got)
	require.Equal(t, 1, client.CallCount(generation.TaskSkillDurability))
	assert.Equal(t, generation.SchemaDurability, client.Calls()[0].Request.Schema)
}

func TestEstimate_ProviderFailureYieldsFallback(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	client := generation.NewScriptedClient().
		On(generation.TaskSkillDurability, generation.Fail(errors.New("quota exceeded")))

	got := New(client, Config{}, m).Estimate(context.Background(), "sql", "Analyst", "")

	assert.Equal(t, 3.5, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Degradations.WithLabelValues("durability")))
}

func TestEstimate_BadPayloadsYieldFallback(t *testing.T) {
	for name, body := range map[string]string{
		"malformed":  `{"years":`,
		"wrong type": `{"years": "ten"}`,
		"missing":    `{"months": 4}`,
		"null":       `{"years": null}`,
		"empty":      ``,
	} {
		t.Run(name, func(t *testing.T) {
			client := generation.NewScriptedClient().
				On(generation.TaskSkillDurability, generation.ReplyRaw(body))
			assert.Equal(t, FallbackYears, New(client, Config{}, nil).Estimate(context.Background(), "sql", "Analyst", ""))
		})
	}
}

func TestEstimate_Clamps(t *testing.T) {
	for body, want := range map[string]float64{
		`{"years": 40}`:  MaxYears,
		`{"years": 0.1}`: MinYears,
		`{"years": -3}`:  MinYears,
		`{"years": 15}`:  15,
	} {
		client := generation.NewScriptedClient().
			On(generation.TaskSkillDurability, generation.ReplyRaw(body))
		assert.Equal(t, want, New(client, Config{}, nil).Estimate(context.Background(), "x", "y", ""), body)
	}
}

func TestEstimate_TimeoutYieldsFallback(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	client := generation.NewScriptedClient().
		On(generation.TaskSkillDurability, generation.Block())

	start := time.Now()
	got := New(client, Config{Timeout: 20 * time.Millisecond}, nil).Estimate(context.Background(), "x", "y", "")

	assert.Equal(t, FallbackYears, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEstimate_NilClient(t *testing.T) {
	assert.Equal(t, FallbackYears, New(nil, Config{}, nil).Estimate(context.Background(), "x", "y", ""))
}

func TestEstimateAll(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	client := generation.NewScriptedClient().
		On(generation.TaskSkillDurability, func(ctx context.Context, req generation.Request) (*generation.Response, error) {
			s := req.Subject.(subject)
			if s.Skill == "flaky" {
				return nil, fmt.Errorf("boom")
			}
			return &generation.Response{Body: []byte(fmt.Sprintf(`{"years": %d}`, len(s.Skill)))}, nil
		})

	got := New(client, Config{Concurrency: 2}, nil).EstimateAll(context.Background(), []string{"sql", "python", "flaky", "sql"}, "Analyst", "")

	assert.Equal(t, map[string]float64{"sql": 3, "python": 6, "flaky": FallbackYears}, got)
	assert.Equal(t, 3, client.CallCount(generation.TaskSkillDurability))
}
