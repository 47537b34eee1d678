package main

import (
	"fmt"
	"math/big"

	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/tickmath"
	"github.com/spf13/cobra"
	"lukechampine.com/uint128"
)

type tickPrice struct {
	Tick         int32  `json:"tick"`
	SqrtPriceX64 string `json:"sqrtPriceX64"`
}

func newTickCmd() *cobra.Command {
	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Convert between ticks and Q64.64 square root prices",
	}

	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Square root price at a tick",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tick, _ := cmd.Flags().GetInt32("tick")
			price, err := tickmath.GetSqrtPriceAtTick(tick)
			if err != nil {
				return err
			}
			return printJSON(cmd, tickPrice{Tick: tick, SqrtPriceX64: price.String()})
		},
	}
	priceCmd.Flags().Int32("tick", 0, "tick index")

	atCmd := &cobra.Command{
		Use:   "at",
		Short: "Greatest tick whose price does not exceed a square root price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("sqrt-price")
			price, err := parseUint128(raw)
			if err != nil {
				return fmt.Errorf("sqrt-price: %w", err)
			}
			tick, err := tickmath.GetTickAtSqrtPrice(price)
			if err != nil {
				return err
			}
			return printJSON(cmd, tickPrice{Tick: tick, SqrtPriceX64: price.String()})
		},
	}
	atCmd.Flags().String("sqrt-price", bignum.Q64.String(), "Q64.64 square root price")

	tickCmd.AddCommand(priceCmd, atCmd)
	return tickCmd
}

func parseUint128(s string) (uint128.Uint128, error) {
	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return uint128.Zero, fmt.Errorf("invalid integer %q", s)
	}
	if b.Sign() < 0 || b.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%s does not fit in 128 bits", s)
	}
	return uint128.FromBig(b), nil
}

func parseI128(s string) (bignum.I128, error) {
	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return bignum.I128{}, fmt.Errorf("invalid integer %q", s)
	}
	v, ok := bignum.I128FromBig(b)
	if !ok {
		return bignum.I128{}, fmt.Errorf("%s does not fit in a signed 128 bit integer", s)
	}
	return v, nil
}
