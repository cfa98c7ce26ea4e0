// Package prebuilt offers ready-made graph topologies behind small typed
// configurations, plus a registry for discovering them by name.
package prebuilt
