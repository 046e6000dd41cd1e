// Package logging wires a single logrus instance shared across the storage
// core, so every component logs in the same structured shape instead of
// the teacher's ad hoc fmt.Printf("[Component] ...") tags.
package logging

import "github.com/sirupsen/logrus"

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// For returns a logger scoped to one component, e.g. logging.For("bufferpool").
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetLevel adjusts verbosity for every component logger at once.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}
