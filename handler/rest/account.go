package rest

import (
	"net/http"
	"time"

	"aqueduct/core"
	"aqueduct/handler/render"
	"aqueduct/handler/views"

	"github.com/go-chi/chi"
)

func accountHandler(
	reserveStore core.IReserveStore,
	reserveService core.IReserveService,
	shareStore core.IShareStore,
	accountService core.IAccountService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := chi.URLParam(r, "user")
		now := time.Now()

		position, err := accountService.Position(ctx, userID, now)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		balances, err := shareStore.FindByUser(ctx, userID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		view := &views.Account{
			AccountPosition: *position,
			Balances:        make([]*views.AccountBalance, 0, len(balances)),
		}
		for _, balance := range balances {
			if balance.ScaledBalance.IsZero() {
				continue
			}
			reserve, err := reserveStore.Find(ctx, balance.AssetID)
			if err != nil {
				render.OperationError(w, err)
				return
			}

			index, err := reserveService.NormalizedIncome(reserve, now)
			if balance.Side == core.ShareSideVariableDebt {
				index, err = reserveService.NormalizedVariableDebt(reserve, now)
			}
			if err != nil {
				render.OperationError(w, err)
				return
			}

			live, err := balance.ScaledBalance.RayMul(index)
			if err != nil {
				render.OperationError(w, err)
				return
			}
			if live, err = live.RayToWad(); err != nil {
				render.OperationError(w, err)
				return
			}

			view.Balances = append(view.Balances, &views.AccountBalance{
				AssetID: balance.AssetID,
				Symbol:  reserve.Symbol,
				Side:    balance.Side.String(),
				Balance: live,
			})
		}

		render.JSON(w, view)
	}
}
