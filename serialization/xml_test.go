package serialization

import (
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/srand/mvvm/registry"
)

type Shape interface {
	Area() float64
}

type Circle struct {
	Radius float64
}

func (c *Circle) Area() float64 { return 3 * c.Radius * c.Radius }

type Square struct {
	Side float64 `xml:"side,attr"`
}

func (s Square) Area() float64 { return s.Side * s.Side }

type Layer struct {
	Name   string `xml:"name,attr"`
	Shapes []Shape
	Child  *Layer
}

type Address struct {
	Street string
	Number int
}

type Person struct {
	ID       int64  `xml:"id,attr"`
	Name     string
	Email    *string
	Active   bool
	Score    float32
	Tags     []string
	Home     Address
	Work     *Address
	Created  time.Time
	Avatar   []byte
	Secret   string `xml:"-"`
	internal string
}

func newSerializer(t *testing.T, opts ...XMLOption) *XMLSerializer {
	t.Helper()
	s, err := NewXMLSerializer(opts...)
	require.NoError(t, err)
	return s
}

func TestXMLRoundTrip(t *testing.T) {
	s := newSerializer(t)
	email := "ann@example.com"
	in := Person{
		ID:       7,
		Name:     "Ann & Co",
		Email:    &email,
		Active:   true,
		Score:    1.5,
		Tags:     []string{"a", "b"},
		Home:     Address{Street: "Main", Number: 1},
		Work:     &Address{Street: "Side", Number: 2},
		Created:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Avatar:   []byte{1, 2, 3},
		Secret:   "hidden",
		internal: "x",
	}

	data, err := s.Marshal(&in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `<Person id="7">`), string(data))
	assert.NotContains(t, string(data), "hidden")

	var out Person
	require.NoError(t, s.Unmarshal(data, &out))

	in.Secret = ""
	in.internal = ""
	assert.Equal(t, in, out)
}

func TestXMLOmitsNil(t *testing.T) {
	s := newSerializer(t)
	element, err := s.Encode(Person{Name: "Bob"})
	require.NoError(t, err)

	assert.Nil(t, element.Child("Email"))
	assert.Nil(t, element.Child("Work"))
	assert.Empty(t, element.ChildrenNamed("Tags"))
}

func TestXMLPolymorphicMembers(t *testing.T) {
	s := newSerializer(t, WithIndent("  "))
	require.NoError(t, s.RegisterType(&Circle{}))
	require.NoError(t, s.RegisterType(Square{}))

	in := Layer{
		Name:   "top",
		Shapes: []Shape{&Circle{Radius: 2}, Square{Side: 3}},
		Child: &Layer{
			Name:   "inner",
			Shapes: []Shape{&Circle{Radius: 1}},
		},
	}

	data, err := s.Marshal(&in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Shapes type="*Circle">`)
	assert.Contains(t, string(data), `<Shapes type="Square" side="3"/>`)

	var out Layer
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

type Holder struct {
	Any   any
	Anys  []any
	Shape Shape
}

func TestXMLInterfaceKeepsPointers(t *testing.T) {
	s := newSerializer(t)
	require.NoError(t, s.RegisterType(Square{}))
	require.NoError(t, s.RegisterType(&Circle{}))

	in := Holder{
		Any:   &Square{Side: 2},
		Anys:  []any{Square{Side: 1}, &Square{Side: 3}},
		Shape: &Square{Side: 4},
	}
	data, err := s.Marshal(&in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Any type="*Square" side="2"/>`)
	assert.Contains(t, string(data), `<Anys type="Square" side="1"/>`)

	var out Holder
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, in, out)
	assert.IsType(t, &Square{}, out.Any)
	assert.IsType(t, Square{}, out.Anys[0])
}

func TestXMLInterfaceScalars(t *testing.T) {
	s := newSerializer(t)

	in := Holder{
		Any:  int64(-5),
		Anys: []any{7, true, "seven", 1.5, float32(2.5), uint8(9)},
	}
	data, err := s.Marshal(&in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Anys type="int">7</Anys>`)
	assert.Contains(t, string(data), `<Anys type="bool">true</Anys>`)

	var out Holder
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

type Celsius float64

func TestXMLInterfaceUnsupportedValues(t *testing.T) {
	s := newSerializer(t)
	n := 3

	for _, v := range []any{&n, []int{1}, Celsius(20), map[string]int{}} {
		_, err := s.Marshal(&Holder{Any: v})
		assert.ErrorIs(t, err, ErrUnsupportedType, "%T", v)
	}

	var out Holder
	err := s.Unmarshal([]byte(`<Holder><Shape type="int">1</Shape></Holder>`), &out)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	err = s.Unmarshal([]byte(`<Holder><Any type="int">x</Any></Holder>`), &out)
	assert.Error(t, err)
}

func TestXMLUnknownType(t *testing.T) {
	s := newSerializer(t)

	var out Layer
	err := s.Unmarshal([]byte(`<Layer><Shapes type="Hexagon"/></Layer>`), &out)
	var unknown *UnknownTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Hexagon", unknown.Name)
}

func TestXMLMissingTypeAttribute(t *testing.T) {
	s := newSerializer(t)
	var out Layer
	assert.Error(t, s.Unmarshal([]byte(`<Layer><Shapes/></Layer>`), &out))
}

func TestXMLRegisterTypeTwice(t *testing.T) {
	s := newSerializer(t)
	require.NoError(t, s.RegisterType(&Circle{}))

	err := s.RegisterType(Circle{})
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.ErrorIs(t, err, registry.ErrInvalidOperation)

	assert.ErrorIs(t, s.RegisterType(nil), ErrInvalidArgument)
	assert.ErrorIs(t, s.RegisterType(42), ErrUnsupportedType)
}

func TestXMLSharedTypeRegistry(t *testing.T) {
	types := registry.New[reflect.Type]()
	writer := newSerializer(t, WithTypeRegistry(types))
	reader := newSerializer(t, WithTypeRegistry(types))
	require.NoError(t, writer.RegisterType(&Circle{}))

	data, err := writer.Marshal(Layer{Shapes: []Shape{&Circle{Radius: 4}}})
	require.NoError(t, err)

	var out Layer
	require.NoError(t, reader.Unmarshal(data, &out))
	assert.Equal(t, &Circle{Radius: 4}, out.Shapes[0])
}

type Scene struct {
	Inner Shape
	Deep  *Layer
}

func TestXMLKnownTypesFlowToChildren(t *testing.T) {
	s := newSerializer(t)
	require.NoError(t, s.RegisterType(&Circle{}))

	element, err := ParseElement(`<Scene>
  <Inner type="Circle"><Radius>1</Radius></Inner>
  <Deep><Shapes type="Circle"><Radius>2</Radius></Shapes></Deep>
</Scene>`)
	require.NoError(t, err)

	var scene Scene
	ctx, err := NewContextInfo(element, &scene)
	require.NoError(t, err)

	r := &modelReader{stack: NewContextStack(), types: s.opts.Types, maxDepth: DefaultMaxDepth}
	require.NoError(t, r.readModel(ctx, reflect.ValueOf(&scene).Elem()))

	assert.True(t, ctx.knownTypes.Contains(reflect.TypeFor[Circle]()))
	assert.Equal(t, StateDiscarded, ctx.State())
	assert.Equal(t, &Circle{Radius: 2}, scene.Deep.Shapes[0])
}

func TestXMLResolveUsesKnownTypesFirst(t *testing.T) {
	types := registry.New[reflect.Type]()
	r := &modelReader{stack: NewContextStack(), types: types, maxDepth: DefaultMaxDepth}

	parent := mustContext(t, "Parent")
	parent.AddKnownType(reflect.TypeFor[Circle]())
	_, err := r.stack.Push(parent)
	require.NoError(t, err)

	child := mustContext(t, "Child")
	_, err = r.stack.Push(child)
	require.NoError(t, err)

	got, err := r.resolve(child, "Circle")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[Circle](), got)
	assert.Equal(t, 0, types.Len())
}

type Node struct {
	Next *Node
}

func TestXMLMaxDepth(t *testing.T) {
	s := newSerializer(t, WithMaxDepth(3))

	_, err := s.Marshal(&Node{Next: &Node{Next: &Node{Next: &Node{}}}})
	assert.ErrorIs(t, err, ErrMaxDepth)

	cycle := &Node{}
	cycle.Next = cycle
	_, err = s.Marshal(cycle)
	assert.ErrorIs(t, err, ErrMaxDepth)

	_, err = s.Marshal(&Node{Next: &Node{}})
	assert.NoError(t, err)
}

func TestXMLInvalidTargets(t *testing.T) {
	s := newSerializer(t)

	_, err := s.Marshal(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.Marshal(42)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	var p Person
	assert.ErrorIs(t, s.Unmarshal([]byte(`<Person/>`), p), ErrInvalidArgument)
	assert.ErrorIs(t, s.Unmarshal([]byte(`<Person/>`), nil), ErrInvalidArgument)
	assert.ErrorIs(t, s.Unmarshal([]byte(``), &p), ErrInvalidArgument)

	type anonymous struct{ M map[string]int }
	_, err = s.Marshal(anonymous{M: map[string]int{"a": 1}})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestXMLBadScalar(t *testing.T) {
	s := newSerializer(t)
	var p Person
	assert.Error(t, s.Unmarshal([]byte(`<Person id="x"/>`), &p))
	assert.Error(t, s.Unmarshal([]byte(`<Person><Active>maybe</Active></Person>`), &p))
}

func TestXMLStream(t *testing.T) {
	s := newSerializer(t)
	var buf bytes.Buffer

	enc := s.NewEncoder(&buf)
	require.NoError(t, enc.Encode(&Address{Street: "One", Number: 1}))
	require.NoError(t, enc.Encode(&Address{Street: "Two", Number: 2}))

	dec := s.NewDecoder(&buf)
	var first, second Address
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, Address{Street: "One", Number: 1}, first)
	assert.Equal(t, Address{Street: "Two", Number: 2}, second)

	assert.ErrorIs(t, dec.Decode(&first), io.EOF)
}

func TestXMLStreamForeignRootName(t *testing.T) {
	s := newSerializer(t)
	dec := s.NewDecoder(strings.NewReader(`<addr><Street>&lt;b&gt;bold&lt;/b&gt;</Street><Number>5</Number></addr>`))

	var a Address
	require.NoError(t, dec.Decode(&a))
	assert.Equal(t, Address{Street: "<b>bold</b>", Number: 5}, a)
}

func TestXMLDecodeElement(t *testing.T) {
	s := newSerializer(t)
	element := NewElement("Address", nil, "", NewElement("Street", nil, "Elm"))

	var a Address
	require.NoError(t, s.Decode(element, &a))
	assert.Equal(t, "Elm", a.Street)
	assert.ErrorIs(t, s.Decode(nil, &a), ErrInvalidArgument)
}

func TestXMLOptions(t *testing.T) {
	_, err := NewXMLSerializer(WithMaxDepth(0))
	assert.Error(t, err)
	_, err = NewXMLSerializer(WithLogger(nil))
	assert.Error(t, err)
	_, err = NewXMLSerializer(WithTypeRegistry(nil))
	assert.Error(t, err)
}

func TestXMLLogsContexts(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s := newSerializer(t, WithLogger(log))

	element, err := s.Encode(&Person{Work: &Address{}})
	require.NoError(t, err)

	var attached, discarded []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		switch entry.Message {
		case "context attached":
			attached = append(attached, entry)
		case "context discarded":
			discarded = append(discarded, entry)
		}
	}

	require.Len(t, attached, 3)
	assert.Equal(t, "Person", attached[0].Data["element"])
	assert.Equal(t, attached[0].Data["operation"], attached[2].Data["operation"])
	assert.Equal(t, 2, attached[2].Data["depth"])

	// discarded contexts carry the element that was actually written
	require.Len(t, discarded, 3)
	assert.Equal(t, "Home", discarded[0].Data["element"])
	assert.Equal(t, 2, discarded[0].Data["children"])
	assert.Equal(t, "Person", discarded[2].Data["element"])
	assert.Equal(t, 1, discarded[2].Data["depth"])
	assert.Equal(t, len(element.Children()), discarded[2].Data["children"])
}

func TestXMLMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	s := newSerializer(t, WithMetrics(metrics))
	require.NoError(t, s.RegisterType(&Circle{}))

	data, err := s.Marshal(&Layer{Shapes: []Shape{&Circle{}}})
	require.NoError(t, err)
	var out Layer
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Error(t, s.Unmarshal([]byte(`<Layer`), &out))

	// Layer and Circle on each side
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.contextsAttached))
	// Circle is inherited by the Circle context itself on both sides
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.knownTypesMerged))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("marshal", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("unmarshal", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("unmarshal", "error")))

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestXMLConcurrentOperations(t *testing.T) {
	s := newSerializer(t)
	require.NoError(t, s.RegisterType(&Circle{}))
	require.NoError(t, s.RegisterType(Square{}))

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			in := Layer{
				Name:   strings.Repeat("x", i),
				Shapes: []Shape{&Circle{Radius: float64(i)}, Square{Side: float64(i)}},
				Child:  &Layer{Shapes: []Shape{&Circle{Radius: 1}}},
			}
			data, err := s.Marshal(&in)
			if err != nil {
				return err
			}
			var out Layer
			if err := s.Unmarshal(data, &out); err != nil {
				return err
			}
			if !reflect.DeepEqual(in, out) {
				t.Errorf("round trip %d mismatch", i)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
