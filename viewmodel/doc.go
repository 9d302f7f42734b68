// Package viewmodel holds the screen state of the list and details views.
//
// A model owns a root context, runs every fetch on its own goroutine and
// publishes immutable state values. State returns the latest value and
// Updates delivers changes on a conflated channel: a slow reader only ever
// sees the most recent state. One-shot notifications, such as a failed page
// load after items are already on screen, arrive on Events.
//
//	list := viewmodel.NewListModel(svc, tracker)
//	defer list.Close()
//	list.Start()
//	for state := range list.Updates() {
//		render(state)
//	}
package viewmodel
