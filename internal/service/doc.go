// Package service contains the application use cases behind the live sync
// stream: building a user's snapshot, notifying their connected sessions,
// and the progress mutations that trigger those notifications.
//
// Services receive their dependencies through constructor injection and
// depend only on the store interfaces, never on a concrete database.
//
// Every mutation commits first and notifies second. Notification failures
// are logged and never fail the mutation that caused them.
package service
