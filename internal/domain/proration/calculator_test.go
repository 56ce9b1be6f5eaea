package proration

import (
	"testing"
	"time"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Calculate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	calc := NewCalculator(loc)

	tests := []struct {
		name          string
		params        Params
		expected      *Result
		expectedError string
	}{
		{
			name: "activation_on_first_of_month_no_proration",
			params: Params{
				ActivationDate: time.Date(2024, 4, 1, 0, 0, 0, 0, loc),
				PackagePrice:   decimal.NewFromInt(300000),
				PeriodUnit:     types.PeriodUnitMonths,
			},
			expected: &Result{
				Applied:       false,
				Amount:        decimal.NewFromInt(300000),
				RemainingDays: 30,
				DaysInPeriod:  30,
			},
		},
		{
			name: "activation_on_day_20_of_30_day_month",
			params: Params{
				ActivationDate: time.Date(2024, 4, 20, 10, 30, 0, 0, loc),
				PackagePrice:   decimal.NewFromInt(300000),
				PeriodUnit:     types.PeriodUnitMonths,
			},
			expected: &Result{
				Applied:       true,
				Amount:        decimal.NewFromInt(110000), // 300000/30 * 11
				RemainingDays: 11,
				DaysInPeriod:  30,
			},
		},
		{
			name: "activation_on_last_day_of_month",
			params: Params{
				ActivationDate: time.Date(2024, 3, 31, 0, 0, 0, 0, loc),
				PackagePrice:   decimal.NewFromInt(310000),
				PeriodUnit:     types.PeriodUnitMonths,
			},
			expected: &Result{
				Applied:       true,
				Amount:        decimal.NewFromInt(10000), // 310000/31 * 1
				RemainingDays: 1,
				DaysInPeriod:  31,
			},
		},
		{
			name: "rounding_half_up_to_whole_unit",
			params: Params{
				ActivationDate: time.Date(2024, 4, 16, 0, 0, 0, 0, loc),
				PackagePrice:   decimal.NewFromInt(100), // 100/30*15 = 50 exactly
				PeriodUnit:     types.PeriodUnitMonths,
			},
			expected: &Result{
				Applied:       true,
				Amount:        decimal.NewFromInt(50),
				RemainingDays: 15,
				DaysInPeriod:  30,
			},
		},
		{
			name: "february_leap_year",
			params: Params{
				ActivationDate: time.Date(2024, 2, 15, 0, 0, 0, 0, loc),
				PackagePrice:   decimal.NewFromInt(290000),
				PeriodUnit:     types.PeriodUnitMonths,
			},
			expected: &Result{
				Applied:       true,
				Amount:        decimal.NewFromInt(150000), // 290000/29 * 15
				RemainingDays: 15,
				DaysInPeriod:  29,
			},
		},
		{
			name: "day_based_period_never_prorates",
			params: Params{
				ActivationDate: time.Date(2024, 4, 20, 0, 0, 0, 0, loc),
				PackagePrice:   decimal.NewFromInt(300000),
				PeriodUnit:     types.PeriodUnitDays,
			},
			expected: &Result{
				Applied: false,
				Amount:  decimal.NewFromInt(300000),
			},
		},
		{
			name: "zero_price_prorates_to_zero",
			params: Params{
				ActivationDate: time.Date(2024, 4, 20, 0, 0, 0, 0, loc),
				PackagePrice:   decimal.Zero,
				PeriodUnit:     types.PeriodUnitMonths,
			},
			expected: &Result{
				Applied:       true,
				Amount:        decimal.Zero,
				RemainingDays: 11,
				DaysInPeriod:  30,
			},
		},
		{
			name: "missing_activation_date",
			params: Params{
				PackagePrice: decimal.NewFromInt(300000),
				PeriodUnit:   types.PeriodUnitMonths,
			},
			expectedError: "activation date is required",
		},
		{
			name: "negative_price_rejected",
			params: Params{
				ActivationDate: time.Date(2024, 4, 20, 0, 0, 0, 0, loc),
				PackagePrice:   decimal.NewFromInt(-1),
				PeriodUnit:     types.PeriodUnitMonths,
			},
			expectedError: "package price cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Calculate(tt.params)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected.Applied, result.Applied)
			assert.True(t, tt.expected.Amount.Equal(result.Amount),
				"expected amount %s, got %s", tt.expected.Amount, result.Amount)
			assert.Equal(t, tt.expected.RemainingDays, result.RemainingDays)
			assert.Equal(t, tt.expected.DaysInPeriod, result.DaysInPeriod)
		})
	}
}

func TestCalculator_AmountIsWholeAndBelowPrice(t *testing.T) {
	loc := time.UTC
	calc := NewCalculator(loc)
	price := decimal.NewFromInt(259000)

	for day := 2; day <= 31; day++ {
		result, err := calc.Calculate(Params{
			ActivationDate: time.Date(2024, 1, day, 0, 0, 0, 0, loc),
			PackagePrice:   price,
			PeriodUnit:     types.PeriodUnitMonths,
		})
		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.True(t, result.Amount.LessThan(price),
			"day %d: prorated %s not below %s", day, result.Amount, price)
		assert.True(t, result.Amount.Equal(result.Amount.Truncate(0)),
			"day %d: amount %s is not a whole number", day, result.Amount)
	}
}
