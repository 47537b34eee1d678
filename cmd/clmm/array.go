package main

import (
	"fmt"

	"github.com/defistate/clmm-core-go/protocols/clmm"
	"github.com/defistate/clmm-core-go/protocols/clmm/tickarray"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

type arrayStartOutput struct {
	Tick           int32  `json:"tick"`
	TickSpacing    uint16 `json:"tickSpacing"`
	StartTickIndex int32  `json:"startTickIndex"`
	TickCount      int32  `json:"tickCount"`
	Offset         int    `json:"offset"`
}

type arrayOutput struct {
	Address              solana.PublicKey `json:"address"`
	PoolID               solana.PublicKey `json:"poolId"`
	StartTickIndex       int32            `json:"startTickIndex"`
	InitializedTickCount uint8            `json:"initializedTickCount"`
	RecentEpoch          uint64           `json:"recentEpoch"`
	Ticks                []clmm.TickState `json:"ticks"`
	Lowest               *clmm.TickState  `json:"lowest,omitempty"`
	Highest              *clmm.TickState  `json:"highest,omitempty"`
	Raw                  string           `json:"raw,omitempty"`
}

type nextTickOutput struct {
	From           int32           `json:"from"`
	ZeroForOne     bool            `json:"zeroForOne"`
	StartTickIndex int32           `json:"startTickIndex"`
	Found          bool            `json:"found"`
	Next           *clmm.TickState `json:"next,omitempty"`
}

func newArrayOutput(l tickarray.Lookup) arrayOutput {
	out := arrayOutput{
		Address:              l.Address,
		PoolID:               l.Array.PoolID,
		StartTickIndex:       l.Array.StartTickIndex,
		InitializedTickCount: l.Array.InitializedTickCount,
		RecentEpoch:          l.Array.RecentEpoch,
		Ticks:                []clmm.TickState{},
	}
	for _, t := range l.Array.Ticks {
		if t.IsInitialized() {
			out.Ticks = append(out.Ticks, t)
		}
	}
	if lowest, err := l.Array.FirstInitializedTick(false); err == nil {
		out.Lowest = lowest
	}
	if highest, err := l.Array.FirstInitializedTick(true); err == nil {
		out.Highest = highest
	}
	return out
}

func parsePool(cmd *cobra.Command) (solana.PublicKey, error) {
	rawPool, _ := cmd.Flags().GetString("pool")
	pool, err := solana.PublicKeyFromBase58(rawPool)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("pool: %w", err)
	}
	return pool, nil
}

func newArrayCmd() *cobra.Command {
	arrayCmd := &cobra.Command{
		Use:   "array",
		Short: "Locate and inspect tick arrays",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start index of the array holding a tick",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tick, _ := cmd.Flags().GetInt32("tick")
			spacing, _ := cmd.Flags().GetUint16("spacing")
			if err := clmm.CheckTickSpacing(tick, spacing); err != nil {
				return err
			}
			start := tickarray.GetArrayStartIndex(tick, spacing)
			offset, err := tickarray.New(solana.PublicKey{}, start, 0).GetTickOffsetInArray(tick, spacing)
			if err != nil {
				return err
			}
			return printJSON(cmd, arrayStartOutput{
				Tick:           tick,
				TickSpacing:    spacing,
				StartTickIndex: start,
				TickCount:      tickarray.TickCount(spacing),
				Offset:         offset,
			})
		},
	}
	startCmd.Flags().Int32("tick", 0, "tick index")
	startCmd.Flags().Uint16("spacing", 1, "pool tick spacing")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored tick array",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, _ := cmd.Flags().GetInt32("start")
			raw, _ := cmd.Flags().GetBool("raw")

			pool, err := parsePool(cmd)
			if err != nil {
				return err
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			m, err := openManagers(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer m.close()

			l, err := m.arrays.Load(cmd.Context(), pool, start)
			if err != nil {
				return err
			}
			out := newArrayOutput(l)
			if raw {
				data, err := l.Array.Encode()
				if err != nil {
					return err
				}
				out.Raw = hexutil.Encode(data)
			}
			return printJSON(cmd, out)
		},
	}
	showCmd.Flags().String("pool", "", "pool id (base58)")
	showCmd.Flags().Int32("start", 0, "array start tick index")
	showCmd.Flags().Bool("raw", false, "include the hex encoded record")

	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Next initialized tick inside the stored array holding a tick",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tick, _ := cmd.Flags().GetInt32("tick")
			spacing, _ := cmd.Flags().GetUint16("spacing")
			zeroForOne, _ := cmd.Flags().GetBool("zero-for-one")

			pool, err := parsePool(cmd)
			if err != nil {
				return err
			}
			if spacing == 0 {
				return clmm.ErrZeroTickSpacing
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			m, err := openManagers(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer m.close()

			start := tickarray.GetArrayStartIndex(tick, spacing)
			l, err := m.arrays.Load(cmd.Context(), pool, start)
			if err != nil {
				return err
			}
			out := nextTickOutput{From: tick, ZeroForOne: zeroForOne, StartTickIndex: start}
			out.Next, out.Found = l.Array.NextInitializedTick(tick, spacing, zeroForOne)
			return printJSON(cmd, out)
		},
	}
	nextCmd.Flags().String("pool", "", "pool id (base58)")
	nextCmd.Flags().Int32("tick", 0, "tick to search from")
	nextCmd.Flags().Uint16("spacing", 1, "pool tick spacing")
	nextCmd.Flags().Bool("zero-for-one", false, "search downwards, including the tick itself")

	arrayCmd.AddCommand(startCmd, showCmd, nextCmd)
	return arrayCmd
}
