package main

import (
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm"
	"github.com/defistate/clmm-core-go/protocols/clmm/calculator/bignum"
	"github.com/defistate/clmm-core-go/protocols/clmm/position"
	"github.com/defistate/clmm-core-go/protocols/clmm/tickarray"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

type positionOutput struct {
	Pool         *clmm.PoolView        `json:"pool"`
	Amount0      uint64                `json:"amount0"`
	Amount1      uint64                `json:"amount1"`
	LowerFlipped bool                  `json:"lowerFlipped"`
	UpperFlipped bool                  `json:"upperFlipped"`
	Arrays       []arrayOutput         `json:"arrays"`
	Diffs        []tickarray.ArrayDiff `json:"diffs"`
}

func newPositionOutput(pool *clmm.PoolView, res *position.Result) positionOutput {
	out := positionOutput{
		Pool:         pool,
		Amount0:      res.Amount0,
		Amount1:      res.Amount1,
		LowerFlipped: res.LowerFlipped,
		UpperFlipped: res.UpperFlipped,
		Arrays:       []arrayOutput{newArrayOutput(res.Lower)},
		Diffs:        res.Diffs,
	}
	if res.Upper.Address != res.Lower.Address {
		out.Arrays = append(out.Arrays, newArrayOutput(res.Upper))
	}
	return out
}

func newPositionCmd() *cobra.Command {
	positionCmd := &cobra.Command{
		Use:   "position",
		Short: "Apply liquidity changes to stored tick arrays",
	}

	modifyCmd := &cobra.Command{
		Use:   "modify",
		Short: "Add or remove liquidity over a tick range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			rawPool, _ := flags.GetString("pool")
			spacing, _ := flags.GetUint16("spacing")
			rawPrice, _ := flags.GetString("sqrt-price")
			rawLiquidity, _ := flags.GetString("liquidity")
			lower, _ := flags.GetInt32("lower")
			upper, _ := flags.GetInt32("upper")
			rawDelta, _ := flags.GetString("delta")

			poolID, err := solana.PublicKeyFromBase58(rawPool)
			if err != nil {
				return fmt.Errorf("pool: %w", err)
			}
			price, err := parseUint128(rawPrice)
			if err != nil {
				return fmt.Errorf("sqrt-price: %w", err)
			}
			liquidity, err := parseUint128(rawLiquidity)
			if err != nil {
				return fmt.Errorf("liquidity: %w", err)
			}
			delta, err := parseI128(rawDelta)
			if err != nil {
				return fmt.Errorf("delta: %w", err)
			}
			pool, err := clmm.NewPoolView(poolID, spacing, price)
			if err != nil {
				return err
			}
			pool.Liquidity = liquidity

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			m, err := openManagers(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer m.close()

			res, err := m.positions.ModifyPosition(cmd.Context(), pool, lower, upper, delta)
			if err != nil {
				return err
			}
			return printJSON(cmd, newPositionOutput(pool, res))
		},
	}
	modifyCmd.Flags().String("pool", "", "pool id (base58)")
	modifyCmd.Flags().Uint16("spacing", 1, "pool tick spacing")
	modifyCmd.Flags().String("sqrt-price", bignum.Q64.String(), "current Q64.64 square root price of the pool")
	modifyCmd.Flags().String("liquidity", "0", "active pool liquidity before the change")
	modifyCmd.Flags().Int32("lower", -60, "lower tick")
	modifyCmd.Flags().Int32("upper", 60, "upper tick")
	modifyCmd.Flags().String("delta", "1000000", "signed liquidity delta")

	positionCmd.AddCommand(modifyCmd)
	return positionCmd
}
