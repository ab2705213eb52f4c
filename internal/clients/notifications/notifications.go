package notifications

// Notifier is told about snatch outcomes.
type Notifier interface {
	NotifySnatch(name, provider, method string)
	NotifySnatchFailed(name string, err error)
	NotifyNotEnoughSpace(name string)
	Test() error
}

func snatchMessage(name, provider, method string) (string, string) {
	title := "Snatched: " + name
	body := "Found on " + provider + ", sent via " + method
	return title, body
}

func failureMessage(name string, err error) (string, string) {
	return "Snatch failed: " + name, err.Error()
}
