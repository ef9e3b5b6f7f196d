package payment

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// schemaVersion is bumped whenever the metadata layout changes. Confirmation
// rejects versions it does not understand instead of guessing.
const schemaVersion = "1"

// Metadata key names as stored in the gateway's metadata bag.
const (
	metaKeyVersion  = "schema_version"
	metaKeyOwner    = "owner_id"
	metaKeyCoupon   = "coupon_code"
	metaKeyProducts = "products"
)

// Metadata is the pricing intent carried through the gateway round trip.
// It is snapshotted at session creation and decoded at confirmation; the
// live cart is never consulted again.
type Metadata struct {
	OwnerID    string
	CouponCode string
	Products   []ProductEntry
}

// ProductEntry is one purchased product inside the metadata snapshot.
type ProductEntry struct {
	ProductID string
	Quantity  int
	UnitPrice int64
}

// Encode serializes the metadata into the gateway's string-to-string bag.
func (m Metadata) Encode() map[string]string {
	var e jx.Encoder
	e.ArrStart()
	for _, p := range m.Products {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(p.ProductID)
		e.FieldStart("quantity")
		e.Int(p.Quantity)
		e.FieldStart("price")
		e.Int64(p.UnitPrice)
		e.ObjEnd()
	}
	e.ArrEnd()

	bag := map[string]string{
		metaKeyVersion:  schemaVersion,
		metaKeyOwner:    m.OwnerID,
		metaKeyProducts: string(e.Bytes()),
	}
	if m.CouponCode != "" {
		bag[metaKeyCoupon] = m.CouponCode
	}
	return bag
}

// DecodeMetadata parses a metadata bag defensively: unknown versions,
// missing fields, and malformed product lists are all rejected.
func DecodeMetadata(bag map[string]string) (Metadata, error) {
	if v := bag[metaKeyVersion]; v != schemaVersion {
		return Metadata{}, errors.Errorf("unsupported metadata schema version %q", v)
	}

	m := Metadata{
		OwnerID:    bag[metaKeyOwner],
		CouponCode: bag[metaKeyCoupon],
	}
	if m.OwnerID == "" {
		return Metadata{}, errors.New("metadata missing owner id")
	}

	raw, ok := bag[metaKeyProducts]
	if !ok {
		return Metadata{}, errors.New("metadata missing product list")
	}

	d := jx.DecodeStr(raw)
	err := d.Arr(func(d *jx.Decoder) error {
		var p ProductEntry
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ProductID, err = d.Str()
			case "quantity":
				p.Quantity, err = d.Int()
			case "price":
				p.UnitPrice, err = d.Int64()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		m.Products = append(m.Products, p)
		return nil
	})
	if err != nil {
		return Metadata{}, errors.Wrap(err, "decode product list")
	}

	if len(m.Products) == 0 {
		return Metadata{}, errors.New("metadata product list is empty")
	}
	for _, p := range m.Products {
		if p.ProductID == "" || p.Quantity <= 0 || p.UnitPrice < 0 {
			return Metadata{}, errors.Errorf("malformed product entry %q", p.ProductID)
		}
	}
	return m, nil
}
