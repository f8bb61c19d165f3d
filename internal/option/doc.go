// Package option describes plugin configuration as data.
//
// A Schema is the immutable description of one option: its name, a
// human-readable description, its kind, its default and, depending on the
// kind, an enumeration of allowed values or inclusive bounds. Eight kinds
// exist:
//
//	Int, Float, String
//	EnumedInt, EnumedFloat, EnumedString
//	RangedInt, RangedFloat
//
// User choices live in a separate Values store built from a set of schemas.
// Values.Set validates every write against the schema's domain: enumerated
// kinds store a choice index that must be in range, ranged kinds must stay
// within [Min, Max]. Reading an option that was never set yields its default.
//
//	schemas := []option.Schema{
//	    option.MustRangedInt("sniff_bytes", "bytes read for content sniffing", 512, 65536, 3072),
//	    option.MustEnumedString("mode", "lookup mode", []string{"exact", "basename"}, 0),
//	}
//	values := option.NewValues(schemas...)
//	if err := values.Set("sniff_bytes", 4096); err != nil {
//	    return err
//	}
//	n := values.Int("sniff_bytes")
//
// Schemas serialize as plain data through Spec, so they can be listed by the
// CLI or the HTTP API without exposing the store.
package option
