package main

import (
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/liquiditymath"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickmath"
	"github.com/spf13/cobra"
)

type amountsOutput struct {
	TickCurrent    int32  `json:"tickCurrent"`
	SqrtPriceX64   string `json:"sqrtPriceX64"`
	TickLower      int32  `json:"tickLower"`
	TickUpper      int32  `json:"tickUpper"`
	LiquidityDelta string `json:"liquidityDelta"`
	Amount0        uint64 `json:"amount0"`
	Amount1        uint64 `json:"amount1"`
}

func newAmountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amounts",
		Short: "Token amounts for a liquidity change over a tick range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			rawPrice, _ := flags.GetString("sqrt-price")
			rawDelta, _ := flags.GetString("delta")
			lower, _ := flags.GetInt32("lower")
			upper, _ := flags.GetInt32("upper")

			price, err := parseUint128(rawPrice)
			if err != nil {
				return fmt.Errorf("sqrt-price: %w", err)
			}
			delta, err := parseI128(rawDelta)
			if err != nil {
				return fmt.Errorf("delta: %w", err)
			}
			current, err := tickmath.GetTickAtSqrtPrice(price)
			if err != nil {
				return err
			}
			amount0, amount1, err := liquiditymath.GetDeltaAmountsSigned(current, price, lower, upper, delta)
			if err != nil {
				return err
			}
			return printJSON(cmd, amountsOutput{
				TickCurrent:    current,
				SqrtPriceX64:   price.String(),
				TickLower:      lower,
				TickUpper:      upper,
				LiquidityDelta: delta.String(),
				Amount0:        amount0,
				Amount1:        amount1,
			})
		},
	}
	cmd.Flags().String("sqrt-price", bignum.Q64.String(), "current Q64.64 square root price")
	cmd.Flags().Int32("lower", -60, "lower tick of the range")
	cmd.Flags().Int32("upper", 60, "upper tick of the range")
	cmd.Flags().String("delta", "1000000", "signed liquidity delta")
	return cmd
}
