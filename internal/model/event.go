// internal/model/event.go
package model

import (
	"sort"
	"time"
)

// EventName is the fixed vocabulary of status events pushed to listeners
type EventName string

const (
	EventDisplayConnected                EventName = "displayConnected"
	EventDisplayCommunicationError       EventName = "displayCommunicationError"
	EventDisplayDisconnected             EventName = "displayDisconnected"
	EventInputDeviceCommunicationError   EventName = "inputDeviceCommunicationError"
	EventInputDeviceConnected            EventName = "inputDeviceConnected"
	EventInputDeviceDisconnected         EventName = "inputDeviceDisconnected"
	EventInputDeviceReadData             EventName = "inputDeviceReadData"
	EventPrinterCommunicationError       EventName = "printerCommunicationError"
	EventPrinterDrawerCommunicationError EventName = "printerDrawerCommunicationError"
	EventPrinterDrawerClosed             EventName = "printerDrawerClosed"
	EventPrinterDrawerOpened             EventName = "printerDrawerOpened"
	EventPrinterIsReady                  EventName = "printerIsReady"
	EventPrinterHasError                 EventName = "printerHasError"
	EventPrinterPaperIsReady             EventName = "printerPaperIsReady"
	EventPrinterPaperIsNearEmpty         EventName = "printerPaperIsNearEmpty"
	EventPrinterPaperIsEmpty             EventName = "printerPaperIsEmpty"
	EventPrinterCoverOpened              EventName = "printerCoverOpened"
	EventPrinterCoverClosed              EventName = "printerCoverClosed"
)

var eventNames = map[EventName]struct{}{
	EventDisplayConnected:                {},
	EventDisplayCommunicationError:       {},
	EventDisplayDisconnected:             {},
	EventInputDeviceCommunicationError:   {},
	EventInputDeviceConnected:            {},
	EventInputDeviceDisconnected:         {},
	EventInputDeviceReadData:             {},
	EventPrinterCommunicationError:       {},
	EventPrinterDrawerCommunicationError: {},
	EventPrinterDrawerClosed:             {},
	EventPrinterDrawerOpened:             {},
	EventPrinterIsReady:                  {},
	EventPrinterHasError:                 {},
	EventPrinterPaperIsReady:             {},
	EventPrinterPaperIsNearEmpty:         {},
	EventPrinterPaperIsEmpty:             {},
	EventPrinterCoverOpened:              {},
	EventPrinterCoverClosed:              {},
}

// IsValid reports whether the name belongs to the vocabulary
func (n EventName) IsValid() bool {
	_, ok := eventNames[n]
	return ok
}

// EventNames returns every reserved event name
func EventNames() []EventName {
	names := make([]EventName, 0, len(eventNames))
	for name := range eventNames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// PrinterEvent is a single status notification
type PrinterEvent struct {
	Name      EventName `json:"name"`
	Data      string    `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
