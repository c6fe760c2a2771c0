package rest

import (
	"fmt"
	"net/http"

	"aqueduct/core"
	"aqueduct/handler/param"
	"aqueduct/handler/render"
	"aqueduct/pkg/fixedpoint"

	"github.com/shopspring/decimal"
)

// amounts arrive as decimal strings of the underlying unit; "max" resolves to
// the caller's full balance on withdraw and repay.
func parseAmount(s string) (fixedpoint.Big, error) {
	if s == "max" {
		return core.MaxAmount, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	if !d.IsPositive() {
		return fixedpoint.Big{}, fmt.Errorf("amount %q must be positive", s)
	}
	return fixedpoint.FromDecimal(d, 18)
}

func supplyHandler(poolService core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID      string `json:"user_id"`
			AssetID     string `json:"asset_id"`
			Amount      string `json:"amount"`
			Beneficiary string `json:"beneficiary"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := parseAmount(params.Amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := poolService.Supply(r.Context(), params.UserID, params.AssetID, amount, params.Beneficiary); err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, render.H{"amount": amount})
	}
}

func withdrawHandler(poolService core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID    string `json:"user_id"`
			AssetID   string `json:"asset_id"`
			Amount    string `json:"amount"`
			Recipient string `json:"recipient"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := parseAmount(params.Amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		paid, err := poolService.Withdraw(r.Context(), params.UserID, params.AssetID, amount, params.Recipient)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, render.H{"amount": paid})
	}
}

func borrowHandler(poolService core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID  string `json:"user_id"`
			AssetID string `json:"asset_id"`
			Amount  string `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := parseAmount(params.Amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := poolService.Borrow(r.Context(), params.UserID, params.AssetID, amount, core.BorrowModeVariable); err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, render.H{"amount": amount})
	}
}

func repayHandler(poolService core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID  string `json:"user_id"`
			AssetID string `json:"asset_id"`
			Amount  string `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := parseAmount(params.Amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		settled, err := poolService.Repay(r.Context(), params.UserID, params.AssetID, amount, core.BorrowModeVariable)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, render.H{"amount": settled})
	}
}

func liquidateHandler(poolService core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Liquidator      string `json:"liquidator"`
			Borrower        string `json:"borrower"`
			CollateralAsset string `json:"collateral_asset"`
			DebtAsset       string `json:"debt_asset"`
			DebtToCover     string `json:"debt_to_cover"`
			ReceiveShares   bool   `json:"receive_shares"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		debtToCover, err := parseAmount(params.DebtToCover)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		seized, err := poolService.LiquidationCall(r.Context(), params.Liquidator, params.CollateralAsset, params.DebtAsset, params.Borrower, debtToCover, params.ReceiveShares)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, render.H{"seized": seized})
	}
}
