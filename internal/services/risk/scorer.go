package risk

import (
	"fmt"

	"FinAgent/internal/domain/models"
	"FinAgent/pkg/config"
)

const rulePoints = 2

// Thresholds configure the scorer's rules.
type Thresholds struct {
	RSIOverbought  float64
	RSIOversold    float64
	HighBeta       float64
	HighVolatility float64
	DefaultBeta    float64
}

// DefaultThresholds returns the conventional 70/30 RSI band, beta 1.5 and 3% volatility.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIOverbought:  70,
		RSIOversold:    30,
		HighBeta:       1.5,
		HighVolatility: 3,
		DefaultBeta:    1.0,
	}
}

// Scorer combines RSI, volatility and beta into an additive risk score.
type Scorer struct {
	t Thresholds
}

func NewScorer(t Thresholds) *Scorer {
	return &Scorer{t: t}
}

// NewScorerFromConfig builds a scorer from the risk section of cfg.
func NewScorerFromConfig(cfg *config.Config) *Scorer {
	return NewScorer(Thresholds{
		RSIOverbought:  cfg.Risk.RSIOverbought,
		RSIOversold:    cfg.Risk.RSIOversold,
		HighBeta:       cfg.Risk.HighBeta,
		HighVolatility: cfg.Risk.HighVolatility,
		DefaultBeta:    cfg.Risk.DefaultBeta,
	})
}

// DefaultBeta is used when the data source has no beta for a symbol.
func (s *Scorer) DefaultBeta() float64 { return s.t.DefaultBeta }

// BetaOrDefault dereferences beta, falling back to the configured default.
func (s *Scorer) BetaOrDefault(beta *float64) float64 {
	if beta == nil {
		return s.t.DefaultBeta
	}
	return *beta
}

// Assess scores the inputs. Rules are applied in a fixed order and each adds its reason.
// The overbought and oversold rules are mutually exclusive.
func (s *Scorer) Assess(rsi, volatility, beta float64) models.RiskAssessment {
	score := 0
	reasons := make([]string, 0, 3)

	switch {
	case rsi > s.t.RSIOverbought:
		score += rulePoints
		reasons = append(reasons, fmt.Sprintf("RSI indicates overbought (>%s)", trim(s.t.RSIOverbought)))
	case rsi < s.t.RSIOversold:
		score += rulePoints
		reasons = append(reasons, fmt.Sprintf("RSI indicates oversold (<%s)", trim(s.t.RSIOversold)))
	}

	if beta > s.t.HighBeta {
		score += rulePoints
		reasons = append(reasons, fmt.Sprintf("High beta (>%s) - volatile vs market", trim(s.t.HighBeta)))
	}

	if volatility > s.t.HighVolatility {
		score += rulePoints
		reasons = append(reasons, fmt.Sprintf("High daily volatility (>%s%%)", trim(s.t.HighVolatility)))
	}

	return models.RiskAssessment{
		Score:      score,
		Level:      models.LevelForScore(score),
		Reasons:    reasons,
		RSI:        rsi,
		Volatility: volatility,
		Beta:       beta,
	}
}

func trim(v float64) string {
	return fmt.Sprintf("%g", v)
}
