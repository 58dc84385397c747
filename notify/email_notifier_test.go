package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/Aashish23092/dualasset-analyzer/config"
	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gomail "gopkg.in/mail.v2"
)

func sampleResults() []dto.ImageResult {
	best := &dto.AnalyzedOffer{
		Offer:            dto.Offer{TargetPrice: 95.5, RatePercent: 200},
		DeviationPercent: -4.5,
		Decision:         dto.DecisionFavorableBuy,
	}
	return []dto.ImageResult{
		{Filename: "empty.png", Status: dto.RunStatusEmpty},
		{
			Filename: "btc.png",
			Status:   dto.RunStatusFull,
			Result: &dto.AnalysisResult{
				Coin:      "BTC",
				Reference: dto.Reference{Price: 100, Source: dto.ReferenceFromOCR},
				BestBuy:   best,
			},
		},
	}
}

func TestRenderRecommendations(t *testing.T) {
	msg, ok := RenderRecommendations(sampleResults())
	require.True(t, ok)

	assert.Equal(t, "Dual Asset: 1 recommended offer(s)", msg.Subject)
	assert.Contains(t, msg.Text, "[btc.png] BTC Buy Low @ 95.5000, APR 200.00%")
	assert.NotContains(t, msg.Text, "empty.png")
}

func TestRenderRecommendationsNothingToSend(t *testing.T) {
	_, ok := RenderRecommendations(sampleResults()[:1])
	assert.False(t, ok)
}

func TestNotifyDisabled(t *testing.T) {
	n := NewEmailNotifier(config.EmailConfig{})
	n.send = func(*gomail.Message) error {
		t.Fatal("send must not be called")
		return nil
	}

	assert.NoError(t, n.Notify(context.Background(), sampleResults()))
}

func TestNotifySendsAndWrapsErrors(t *testing.T) {
	n := NewEmailNotifier(config.EmailConfig{
		Enabled: true,
		From:    "bot@example.com",
		To:      []string{"me@example.com"},
	})

	var sent *gomail.Message
	n.send = func(m *gomail.Message) error {
		sent = m
		return nil
	}
	require.NoError(t, n.Notify(context.Background(), sampleResults()))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"me@example.com"}, sent.GetHeader("To"))

	n.send = func(*gomail.Message) error { return errors.New("connection refused") }
	err := n.Notify(context.Background(), sampleResults())
	assert.ErrorContains(t, err, "connection refused")
}
