package script

import (
	"strings"

	"github.com/d5/tengo/v2"

	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/engine"
)

// Module builds the "ecs" module table.
func (b *Bridge) Module() map[string]tengo.Object {
	return map[string]tengo.Object{
		"new_entity":          &tengo.UserFunction{Name: "new_entity", Value: b.newEntity},
		"delete_entity":       &tengo.UserFunction{Name: "delete_entity", Value: b.deleteEntity},
		"entity_exists":       &tengo.UserFunction{Name: "entity_exists", Value: b.entityExists},
		"has_component":       &tengo.UserFunction{Name: "has_component", Value: b.hasComponent},
		"get_component":       &tengo.UserFunction{Name: "get_component", Value: b.getComponent},
		"set_component":       &tengo.UserFunction{Name: "set_component", Value: b.setComponent},
		"remove_component":    &tengo.UserFunction{Name: "remove_component", Value: b.removeComponent},
		"component_id":        &tengo.UserFunction{Name: "component_id", Value: b.componentID},
		"get_component_by_id": &tengo.UserFunction{Name: "get_component_by_id", Value: b.getComponentByID},
		"query":               &tengo.UserFunction{Name: "query", Value: b.query},
		"emit":                &tengo.UserFunction{Name: "emit", Value: b.emit},
		"log":                 &tengo.UserFunction{Name: "log", Value: b.logMessage},
	}
}

func (b *Bridge) newEntity(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 0 {
		return nil, tengo.ErrWrongNumArguments
	}
	return entityObject(b.world.NewEntity()), nil
}

func (b *Bridge) deleteEntity(args ...tengo.Object) (tengo.Object, error) {
	e, err := entityArg("delete_entity", args, 1)
	if err != nil {
		return nil, err
	}
	b.world.DeleteEntity(e)
	return tengo.UndefinedValue, nil
}

func (b *Bridge) entityExists(args ...tengo.Object) (tengo.Object, error) {
	e, err := entityArg("entity_exists", args, 1)
	if err != nil {
		return nil, err
	}
	return boolObject(b.world.Exists(e)), nil
}

func (b *Bridge) hasComponent(args ...tengo.Object) (tengo.Object, error) {
	e, acc, ok, err := b.componentArgs("has_component", args, 2)
	if err != nil || !ok {
		return tengo.FalseValue, err
	}
	return boolObject(acc.has(b.world, e)), nil
}

func (b *Bridge) getComponent(args ...tengo.Object) (tengo.Object, error) {
	e, acc, ok, err := b.componentArgs("get_component", args, 2)
	if err != nil || !ok {
		return tengo.UndefinedValue, err
	}
	v, found, err := acc.get(b.world, e)
	if err != nil {
		return nil, err
	}
	if !found {
		return tengo.UndefinedValue, nil
	}
	return tengo.FromInterface(v)
}

func (b *Bridge) setComponent(args ...tengo.Object) (tengo.Object, error) {
	e, acc, ok, err := b.componentArgs("set_component", args, 3)
	if err != nil || !ok {
		return tengo.FalseValue, err
	}
	if !b.world.Exists(e) {
		return tengo.FalseValue, nil
	}
	if err := acc.set(b.world, e, tengo.ToInterface(args[2])); err != nil {
		name, _ := tengo.ToString(args[1])
		b.log.Warn().Err(err).Str("component", name).Stringer("entity", e).Msg("script wrote a malformed component")
		return tengo.FalseValue, nil
	}
	return tengo.TrueValue, nil
}

func (b *Bridge) removeComponent(args ...tengo.Object) (tengo.Object, error) {
	e, acc, ok, err := b.componentArgs("remove_component", args, 2)
	if err != nil || !ok {
		return tengo.UndefinedValue, err
	}
	acc.remove(b.world, e)
	return tengo.UndefinedValue, nil
}

// component_id(entity, name) returns the id of the entity's component, or
// undefined.
func (b *Bridge) componentID(args ...tengo.Object) (tengo.Object, error) {
	e, acc, ok, err := b.componentArgs("component_id", args, 2)
	if err != nil || !ok {
		return tengo.UndefinedValue, err
	}
	id, found := acc.idOf(b.world, e)
	if !found {
		return tengo.UndefinedValue, nil
	}
	return &tengo.Int{Value: int64(uint64(id))}, nil
}

// get_component_by_id(name, id) returns {entity, value} for a live component.
// Components left behind by deleted entities are reclaimed and read as
// undefined.
func (b *Bridge) getComponentByID(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	name, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "component", Expected: "string", Found: args[0].TypeName()}
	}
	id, ok := tengo.ToInt64(args[1])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "id", Expected: "int", Found: args[1].TypeName()}
	}
	acc, ok := b.lookup(name)
	if !ok {
		return tengo.UndefinedValue, nil
	}
	e, v, found, err := acc.byID(b.world, ecs.ID(uint64(id)))
	if err != nil {
		return nil, err
	}
	if !found {
		return tengo.UndefinedValue, nil
	}
	value, err := tengo.FromInterface(v)
	if err != nil {
		return nil, err
	}
	return &tengo.Map{Value: map[string]tengo.Object{
		"entity": entityObject(e),
		"value":  value,
	}}, nil
}

// query(primary, with...) returns the entities holding every named
// component.
func (b *Bridge) query(args ...tengo.Object) (tengo.Object, error) {
	if len(args) == 0 {
		return nil, tengo.ErrWrongNumArguments
	}
	names := make([]string, len(args))
	for i, arg := range args {
		name, ok := tengo.ToString(arg)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "component", Expected: "string", Found: arg.TypeName()}
		}
		names[i] = name
	}

	primary, ok := b.lookup(names[0])
	if !ok {
		return &tengo.Array{}, nil
	}
	with := make([]ecs.TypeID, 0, len(names)-1)
	for _, name := range names[1:] {
		acc, ok := b.lookup(name)
		if !ok {
			return &tengo.Array{}, nil
		}
		with = append(with, acc.typeID(b.world))
	}

	ents := primary.each(b.world, with)
	out := make([]tengo.Object, len(ents))
	for i, e := range ents {
		out[i] = entityObject(e)
	}
	return &tengo.Array{Value: out}, nil
}

// emit(name[, entity[, data]]) publishes an event on the scene channel.
func (b *Bridge) emit(args ...tengo.Object) (tengo.Object, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, tengo.ErrWrongNumArguments
	}
	name, ok := tengo.ToString(args[0])
	if !ok || strings.TrimSpace(name) == "" {
		return tengo.FalseValue, nil
	}
	ev := engine.Event{Name: name, Entity: ecs.NullEntity}
	if len(args) > 1 {
		if id, ok := tengo.ToInt64(args[1]); ok {
			ev.Entity = ecs.Entity(uint64(id))
		}
	}
	if len(args) > 2 {
		ev.Data = tengo.ToInterface(args[2])
	}
	if b.events == nil {
		return tengo.FalseValue, nil
	}
	b.events.Publish(ev)
	return tengo.TrueValue, nil
}

func (b *Bridge) logMessage(args ...tengo.Object) (tengo.Object, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		if s, ok := tengo.ToString(arg); ok {
			parts[i] = s
		} else {
			parts[i] = arg.String()
		}
	}
	b.log.Info().Msg(strings.Join(parts, " "))
	return tengo.UndefinedValue, nil
}

func (b *Bridge) lookup(name string) (accessor, bool) {
	acc, ok := b.components[name]
	if !ok {
		b.log.Warn().Str("component", name).Msg("script referenced an unexposed component")
	}
	return acc, ok
}

// componentArgs decodes (entity, name, ...) arguments. ok is false when the
// component name is not exposed.
func (b *Bridge) componentArgs(fn string, args []tengo.Object, n int) (ecs.Entity, accessor, bool, error) {
	e, err := entityArg(fn, args, n)
	if err != nil {
		return ecs.NullEntity, accessor{}, false, err
	}
	name, ok := tengo.ToString(args[1])
	if !ok {
		return ecs.NullEntity, accessor{}, false, tengo.ErrInvalidArgumentType{Name: "component", Expected: "string", Found: args[1].TypeName()}
	}
	acc, ok := b.lookup(name)
	return e, acc, ok, nil
}

func entityArg(fn string, args []tengo.Object, n int) (ecs.Entity, error) {
	if len(args) != n {
		return ecs.NullEntity, tengo.ErrWrongNumArguments
	}
	id, ok := tengo.ToInt64(args[0])
	if !ok {
		return ecs.NullEntity, tengo.ErrInvalidArgumentType{Name: fn + " entity", Expected: "int", Found: args[0].TypeName()}
	}
	return ecs.Entity(uint64(id)), nil
}

func entityObject(e ecs.Entity) tengo.Object {
	return &tengo.Int{Value: int64(uint64(e))}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
