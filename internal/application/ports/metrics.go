package ports

// Recorder métricas de negocio emitidas por los casos de uso.
type Recorder interface {
	ReceiptPosted(outcome string)
	AllocationDone(strategy string, shortage bool)
}

// NopRecorder no registra nada.
type NopRecorder struct{}

func (NopRecorder) ReceiptPosted(string)        {}
func (NopRecorder) AllocationDone(string, bool) {}
