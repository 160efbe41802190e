package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts its routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Stopper is a component with a background worker to release on shutdown.
type Stopper interface {
	Stop()
}
