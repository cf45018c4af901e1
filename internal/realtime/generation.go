package realtime

import "sync/atomic"

// Generation защищает от устаревших ответов: каждая загрузка берёт билет,
// результат применяется, только если более новой загрузки ещё не начиналось.
type Generation struct {
	n atomic.Uint64
}

func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

func (g *Generation) IsCurrent(ticket uint64) bool {
	return g.n.Load() == ticket
}
