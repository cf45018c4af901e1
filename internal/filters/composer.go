package filters

import "time"

// Composer держит редактируемый выбор и применённый фильтр со страницей.
// Не потокобезопасен: один Composer на одно представление.
type Composer struct {
	pending Selection
	active  OrderFilter
	page    int
}

func NewComposer() *Composer {
	return &Composer{pending: Selection{Mode: ModeID}, page: 1}
}

func (c *Composer) Dispatch(a Action) Selection {
	c.pending = Reduce(c.pending, a)
	return c.pending
}

func (c *Composer) SetSearchMode(m SearchMode) Selection { return c.Dispatch(SetMode(m)) }
func (c *Composer) SetQuery(q string) Selection { return c.Dispatch(SetQuery(q)) }
func (c *Composer) SetDate(d *time.Time) Selection { return c.Dispatch(SetDate(d)) }
func (c *Composer) SelectFactory(id *uint64) Selection { return c.Dispatch(SelectFactory(id)) }
func (c *Composer) SelectFactorySection(id *uint64) Selection { return c.Dispatch(SelectSection(id)) }
func (c *Composer) SelectMachine(id *uint64) Selection { return c.Dispatch(SelectMachine(id)) }
func (c *Composer) SelectDepartment(id *uint64) Selection { return c.Dispatch(SelectDepartment(id)) }
func (c *Composer) SelectStatus(id *uint64) Selection { return c.Dispatch(SelectStatus(id)) }

func (c *Composer) Pending() Selection { return c.pending }

func (c *Composer) Active() (OrderFilter, int) { return c.active, c.page }

// Apply фиксирует выбор как активный фильтр и возвращает на первую страницу.
func (c *Composer) Apply() (OrderFilter, int) {
	c.active = c.pending.ToFilter()
	c.page = 1
	return c.active, c.page
}

// Reset очищает и выбор, и активный фильтр.
func (c *Composer) Reset() (OrderFilter, int) {
	c.pending = Reduce(c.pending, ResetAction())
	c.active = OrderFilter{}
	c.page = 1
	return c.active, c.page
}

func (c *Composer) SetPage(page int) int {
	if page < 1 {
		page = 1
	}
	c.page = page
	return c.page
}
