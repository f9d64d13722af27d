// Package notify delivers reconciliation notifications to live listeners.
//
// Broker implements ports.Notifier. Notify never blocks: events go through a
// bounded queue and are fanned out by Run to every subscription. A slow
// subscriber loses events rather than stalling the sync engine. Stream pumps
// a subscription over a websocket connection.
package notify
