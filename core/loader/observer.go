package loader

// Observer receives load events on the loader's scheduler.
type Observer interface {
	LoadStarted(req Request)
	LoadProgress(req Request, done, failed int)
	LoadReady(req Request, sum Summary)
	LoadFailed(req Request, err error)
}

// ObserverFuncs implements Observer with optional funcs.
type ObserverFuncs struct {
	OnStarted  func(Request)
	OnProgress func(Request, int, int)
	OnReady    func(Request, Summary)
	OnFailed   func(Request, error)
}

func (o ObserverFuncs) LoadStarted(req Request) {
	if o.OnStarted != nil {
		o.OnStarted(req)
	}
}

func (o ObserverFuncs) LoadProgress(req Request, done, failed int) {
	if o.OnProgress != nil {
		o.OnProgress(req, done, failed)
	}
}

func (o ObserverFuncs) LoadReady(req Request, sum Summary) {
	if o.OnReady != nil {
		o.OnReady(req, sum)
	}
}

func (o ObserverFuncs) LoadFailed(req Request, err error) {
	if o.OnFailed != nil {
		o.OnFailed(req, err)
	}
}
