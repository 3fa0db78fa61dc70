// internal/register/bank.go
package register

// Counts sizes a default-initialized address space: addresses 0..N-1 per
// kind, zero-valued and writable.
type Counts struct {
	Coils            int
	DiscreteInputs   int
	HoldingRegisters int
	InputRegisters   int
}

func (c Counts) of(k Kind) int {
	switch k {
	case Coil:
		return c.Coils
	case DiscreteInput:
		return c.DiscreteInputs
	case HoldingRegister:
		return c.HoldingRegisters
	case InputRegister:
		return c.InputRegisters
	default:
		return 0
	}
}

// Bank aggregates the four register stores of one slave.
type Bank struct {
	stores map[Kind]*Store
}

// NewBank creates a bank with four empty stores.
func NewBank() *Bank {
	b := &Bank{stores: make(map[Kind]*Store, len(Kinds))}
	for _, k := range Kinds {
		b.stores[k] = NewStore(k)
	}
	return b
}

// Store returns the store backing one register kind.
func (b *Bank) Store(k Kind) *Store {
	return b.stores[k]
}

// Fill loads default points into every store per the given counts.
// Existing points are replaced wholesale. Default points are zero-valued
// and writable, so the operator can drive inputs the master only reads.
func (b *Bank) Fill(c Counts) error {
	for _, k := range Kinds {
		n := c.of(k)
		points := make([]Point, 0, n)
		for addr := 0; addr < n; addr++ {
			points = append(points, Point{
				Address: uint16(addr),
				Kind:    k,
			})
		}
		if err := b.stores[k].Load(points); err != nil {
			return err
		}
	}
	return nil
}

// Load groups a mixed point list by kind and replaces each affected store
// wholesale. Kinds absent from the list keep their current contents.
func (b *Bank) Load(points []Point) error {
	byKind := make(map[Kind][]Point)
	for _, p := range points {
		byKind[p.Kind] = append(byKind[p.Kind], p)
	}
	for k, pts := range byKind {
		if err := b.stores[k].Load(pts); err != nil {
			return err
		}
	}
	return nil
}
