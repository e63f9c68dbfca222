// Package schema defines the per-endpoint class/predicate schema model
// derived from VoID descriptions, and the provider that acquires it over
// the SPARQL protocol.
package schema

// Dict is the class/predicate schema of one endpoint:
// class IRI → predicate IRI → object class IRIs or datatype IRIs.
// A Dict is built once per endpoint and treated as frozen by every consumer;
// validation batches read it concurrently without locking.
type Dict map[string]map[string][]string

// EndpointsDict maps endpoint URLs to their schema dictionaries.
type EndpointsDict map[string]Dict

// PrefixMap maps prefix labels to namespace IRIs for one endpoint.
type PrefixMap map[string]string

// Classes returns the class IRIs of the schema in unspecified order.
func (d Dict) Classes() []string {
	out := make([]string, 0, len(d))
	for class := range d {
		out = append(out, class)
	}
	return out
}

// Predicates returns the predicate IRIs declared for class, in unspecified
// order, or nil when the class is unknown.
func (d Dict) Predicates(class string) []string {
	preds, ok := d[class]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(preds))
	for p := range preds {
		out = append(out, p)
	}
	return out
}

// Add records that subjects of class use predicate reaching object (a class
// or datatype IRI). Object may be empty when VoID declares the predicate
// without range information.
func (d Dict) Add(class, predicate, object string) {
	preds, ok := d[class]
	if !ok {
		preds = make(map[string][]string)
		d[class] = preds
	}
	if object == "" {
		if _, ok := preds[predicate]; !ok {
			preds[predicate] = nil
		}
		return
	}
	for _, existing := range preds[predicate] {
		if existing == object {
			return
		}
	}
	preds[predicate] = append(preds[predicate], object)
}
