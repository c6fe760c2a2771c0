package rest

import (
	"net/http"
	"time"

	"aqueduct/core"
	"aqueduct/handler/render"
	"aqueduct/handler/views"
	"aqueduct/pkg/fixedpoint"

	"github.com/go-chi/chi"
)

func allReservesHandler(reserveStore core.IReserveStore, reserveService core.IReserveService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reserves, err := reserveStore.All(r.Context())
		if err != nil {
			render.OperationError(w, err)
			return
		}

		now := time.Now()
		reserveViews := make([]*views.Reserve, 0, len(reserves))
		for _, reserve := range reserves {
			view, err := reserveView(reserve, reserveService, now)
			if err != nil {
				render.OperationError(w, err)
				return
			}
			reserveViews = append(reserveViews, view)
		}

		render.JSON(w, reserveViews)
	}
}

func reserveHandler(reserveStore core.IReserveStore, reserveService core.IReserveService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID := chi.URLParam(r, "asset")
		reserve, err := reserveStore.Find(r.Context(), assetID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		view, err := reserveView(reserve, reserveService, time.Now())
		if err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, view)
	}
}

func eventsHandler(eventStore core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := eventStore.List(r.Context(), 100)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, events)
	}
}

func userEventsHandler(eventStore core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user")
		events, err := eventStore.FindByUser(r.Context(), userID, 100)
		if err != nil {
			render.OperationError(w, err)
			return
		}
		render.JSON(w, events)
	}
}

func reserveView(reserve *core.Reserve, reserveService core.IReserveService, now time.Time) (*views.Reserve, error) {
	totalSupply, err := reserveService.TotalSupply(reserve, now)
	if err != nil {
		return nil, err
	}
	totalDebt, err := reserveService.TotalVariableDebt(reserve, now)
	if err != nil {
		return nil, err
	}

	available, err := totalSupply.Sub(totalDebt)
	if err != nil {
		available = fixedpoint.New(0)
	}

	return &views.Reserve{
		Reserve:            *reserve,
		TotalSupply:        totalSupply,
		TotalVariableDebt:  totalDebt,
		AvailableLiquidity: available,
	}, nil
}
