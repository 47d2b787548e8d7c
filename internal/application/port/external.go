package port

// Route is a logical navigation destination
type Route string

const (
	// RouteBills is the employee bill list
	RouteBills Route = "#employee/bills"

	// RouteDashboard is the admin dashboard root
	RouteDashboard Route = "#admin/dashboard"
)

// Navigator is called by a workflow after a successful terminal operation.
// The concrete implementation is owned by the presentation layer.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a plain function to the Navigator interface
type NavigatorFunc func(route Route)

// Navigate calls the wrapped function
func (f NavigatorFunc) Navigate(route Route) { f(route) }
