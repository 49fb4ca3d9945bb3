package listener

// Orders is an immutable view of recorded startup orders. It is safe for
// concurrent use.
type Orders struct {
	startOrders        map[string]int64
	declaredOrders     map[string]int64
	registrationOrders map[extensionKey]int64
	targetCounts       map[string]int64
}

// Lookup is the read side the snapshot builder needs. Both *Listener and
// *Orders implement it.
type Lookup interface {
	StartOrder(component string) (int64, bool)
	DeclaredStartOrder(component string) (int64, bool)
	RegistrationOrder(contributor, point string, index int64) (int64, bool)
}

var (
	_ Lookup = (*Orders)(nil)
	_ Lookup = (*Listener)(nil)
)

// StartOrder returns the position of component among started components.
func (o *Orders) StartOrder(component string) (int64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o.startOrders[component]
	return v, ok
}

// DeclaredStartOrder returns the non-default start order declared by component.
func (o *Orders) DeclaredStartOrder(component string) (int64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o.declaredOrders[component]
	return v, ok
}

// RegistrationOrder returns the position of a contribution among all
// contributions to its target point.
func (o *Orders) RegistrationOrder(contributor, point string, index int64) (int64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o.registrationOrders[extensionKey{contributor: contributor, point: point, index: index}]
	return v, ok
}

// ContributionCount returns how many contributions the target point received.
func (o *Orders) ContributionCount(extensionPointID string) int64 {
	if o == nil {
		return 0
	}
	return o.targetCounts[extensionPointID]
}

// StartedCount returns the number of components seen starting.
func (o *Orders) StartedCount() int {
	if o == nil {
		return 0
	}
	return len(o.startOrders)
}

// Empty is an Orders with nothing recorded.
var Empty = &Orders{}
