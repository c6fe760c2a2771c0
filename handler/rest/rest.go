package rest

import (
	"errors"
	"net/http"

	"aqueduct/core"
	"aqueduct/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	reserveStore core.IReserveStore,
	eventStore core.IEventStore,
	reserveService core.IReserveService,
	shareStore core.IShareStore,
	accountService core.IAccountService,
	poolService core.IPoolService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/reserves", allReservesHandler(reserveStore, reserveService))
	router.Get("/reserves/{asset}", reserveHandler(reserveStore, reserveService))
	router.Get("/accounts/{user}", accountHandler(reserveStore, reserveService, shareStore, accountService))
	router.Get("/accounts/{user}/events", userEventsHandler(eventStore))
	router.Get("/events", eventsHandler(eventStore))

	router.Post("/supply", supplyHandler(poolService))
	router.Post("/withdraw", withdrawHandler(poolService))
	router.Post("/borrow", borrowHandler(poolService))
	router.Post("/repay", repayHandler(poolService))
	router.Post("/liquidate", liquidateHandler(poolService))

	return router
}
