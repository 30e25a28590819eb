package generator

import (
	"math"

	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/randstream"
	"github.com/unclebandit/creditsim/internal/stats"
)

var incomeWeights = []float64{0.35, 0.45, 0.20}

// GenerateCustomers draws n customers. risk_score comes from a hidden linear
// combination of income and standardized tenure plus noise, so it stays
// correlated with both.
func GenerateCustomers(rs *randstream.Stream, n int) ([]model.Customer, error) {
	if err := requirePositive("customers", n); err != nil {
		return nil, err
	}

	customers := make([]model.Customer, n)
	for i := range customers {
		customers[i].ID = i + 1
	}
	for i := range customers {
		customers[i].Age = rs.IntRange(21, 75)
	}
	for i := range customers {
		customers[i].TenureMonths = rs.IntRange(0, 120)
	}
	for i := range customers {
		customers[i].IncomeBand = model.IncomeBands[rs.Choice(incomeWeights)]
	}
	for i := range customers {
		customers[i].Region = model.Regions[rs.IntRange(0, len(model.Regions))]
	}

	income, err := incomeEffects(customers)
	if err != nil {
		return nil, err
	}
	tz, err := tenureZ(customers)
	if err != nil {
		return nil, err
	}

	latentNoise := rs.Normals(n, 0, 0.9)
	scoreNoise := rs.Normals(n, 0, 35)
	for i := range customers {
		latent := -0.5*income[i] - 0.1*tz[i] + latentNoise[i]
		score := stats.Clamp(650-70*latent+scoreNoise[i], minRiskScore, maxRiskScore)
		customers[i].RiskScore = int(math.Round(score))
	}
	return customers, nil
}
