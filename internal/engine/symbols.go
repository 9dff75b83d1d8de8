package engine

import (
	"fmt"
	"go/constant"
	"reflect"

	"github.com/vovakirdan/minisphere/internal/core"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// throwing adapts fn for scripts: a trailing error result is dropped from
// the signature and raised as a panic instead, which unwinds the script and
// surfaces from Script.Run as its error.
func throwing(fn any) reflect.Value {
	v := reflect.ValueOf(fn)
	t := v.Type()
	n := t.NumOut()
	if n == 0 || t.Out(n-1) != errorType {
		return v
	}
	in := make([]reflect.Type, t.NumIn())
	for i := range in {
		in[i] = t.In(i)
	}
	out := make([]reflect.Type, n-1)
	for i := range out {
		out[i] = t.Out(i)
	}
	return reflect.MakeFunc(reflect.FuncOf(in, out, t.IsVariadic()), func(args []reflect.Value) []reflect.Value {
		var res []reflect.Value
		if t.IsVariadic() {
			res = v.CallSlice(args)
		} else {
			res = v.Call(args)
		}
		if err, _ := res[n-1].Interface().(error); err != nil {
			panic(err)
		}
		return res[:n-1]
	})
}

func intConst(v int) reflect.Value {
	return reflect.ValueOf(constant.MakeInt64(int64(v)))
}

func parseKey(name string) (core.Key, error) {
	k, ok := core.ParseKey(name)
	if !ok {
		return core.KeyNone, fmt.Errorf("%w: unknown key %q", ErrInvalidArgument, name)
	}
	return k, nil
}

func parseColor(s string) (core.Color, error) {
	c, ok := core.ParseColor(s)
	if !ok {
		return core.Color{}, fmt.Errorf("%w: bad color %q", ErrInvalidArgument, s)
	}
	return c, nil
}

// Symbols returns the engine API as a script package. Functions that can
// fail raise their error instead of returning it.
func Symbols(e *Engine) map[string]reflect.Value {
	funcs := map[string]any{
		// Map engine
		"ChangeMap":          e.ChangeMap,
		"ExitMapEngine":      e.ExitMapEngine,
		"IsMapEngineRunning": e.IsMapEngineRunning,
		"GetCurrentMap":      e.MapName,
		"GetMapEngineFrame":  e.GetMapEngineFrame,
		"GetFrameRate":       e.GetFrameRate,
		"SetFrameRate":       e.SetFrameRate,
		"UpdateMapEngine":    e.UpdateMapEngine,
		"RenderMap":          e.RenderMap,
		"SetUpdateScript":    e.SetUpdateScript,
		"SetRenderScript":    e.SetRenderScript,
		"SetDelayScript":     e.SetDelayScript,

		"SetDefaultMapScript":  e.SetDefaultMapScript,
		"CallMapScript":        e.CallMapScript,
		"CallDefaultMapScript": e.CallDefaultMapScript,
		"GetColorMask":         e.GetColorMask,
		"SetColorMask":         e.SetColorMask,
		"CreateColor":          func(r, g, b, a int) core.Color { return core.RGBA(uint8(r), uint8(g), uint8(b), uint8(a)) },
		"ParseColor":           parseColor,

		// Layers and tiles
		"GetNumLayers":            e.GetNumLayers,
		"GetLayerName":            e.GetLayerName,
		"FindLayer":               e.FindLayer,
		"GetLayerWidth":           e.GetLayerWidth,
		"GetLayerHeight":          e.GetLayerHeight,
		"IsLayerVisible":          e.IsLayerVisible,
		"SetLayerVisible":         e.SetLayerVisible,
		"IsLayerReflective":       e.IsLayerReflective,
		"SetLayerReflective":      e.SetLayerReflective,
		"GetLayerMask":            e.GetLayerMask,
		"SetLayerMask":            e.SetLayerMask,
		"SetLayerRenderScript":    e.SetLayerRenderScript,
		"GetMapWidth":             e.GetMapWidth,
		"GetMapHeight":            e.GetMapHeight,
		"IsMapRepeating":          e.IsMapRepeating,
		"GetTile":                 e.GetTile,
		"SetTile":                 e.SetTile,
		"ReplaceTilesOnLayer":     e.ReplaceTilesOnLayer,
		"GetNumTiles":             e.GetNumTiles,
		"GetTileWidth":            e.GetTileWidth,
		"GetTileHeight":           e.GetTileHeight,
		"GetTileName":             e.GetTileName,
		"GetTileDelay":            e.GetTileDelay,
		"SetTileDelay":            e.SetTileDelay,
		"GetNextAnimatedTile":     e.GetNextAnimatedTile,
		"SetNextAnimatedTile":     e.SetNextAnimatedTile,
		"ScreenToMapX":            e.ScreenToMapX,
		"ScreenToMapY":            e.ScreenToMapY,
		"MapToScreenX":            e.MapToScreenX,
		"MapToScreenY":            e.MapToScreenY,
		"GetCameraX":              e.GetCameraX,
		"GetCameraY":              e.GetCameraY,
		"SetCameraX":              e.SetCameraX,
		"SetCameraY":              e.SetCameraY,
		"SetCameraXY":             e.SetCameraXY,
		"AttachCamera":            e.AttachCamera,
		"DetachCamera":            e.DetachCamera,
		"IsCameraAttached":        e.IsCameraAttached,
		"GetCameraPerson":         e.GetCameraPerson,
		"AttachInput":             e.AttachInput,
		"AttachPlayerInput":       e.AttachPlayerInput,
		"DetachInput":             e.DetachInput,
		"DetachPlayerInput":       e.DetachPlayerInput,
		"IsInputAttached":         e.IsInputAttached,
		"GetInputPerson":          e.GetInputPerson,
		"Key":                     parseKey,
		"BindKey":                 e.BindKey,
		"UnbindKey":               e.UnbindKey,
		"GetTalkDistance":         e.GetTalkDistance,
		"SetTalkDistance":         e.SetTalkDistance,
		"SetTalkActivationKey":    e.SetTalkActivationKey,
		"GetTalkActivationKey":    e.GetTalkActivationKey,
		"SetTalkActivationButton": e.SetTalkActivationButton,
		"GetTalkActivationButton": e.GetTalkActivationButton,

		// Triggers and zones
		"AddTrigger":        e.AddTrigger,
		"RemoveTrigger":     e.RemoveTrigger,
		"GetNumTriggers":    e.GetNumTriggers,
		"GetTriggerX":       e.GetTriggerX,
		"GetTriggerY":       e.GetTriggerY,
		"GetTriggerLayer":   e.GetTriggerLayer,
		"SetTriggerXYZ":     e.SetTriggerXYZ,
		"SetTriggerScript":  e.SetTriggerScript,
		"ExecuteTrigger":    e.ExecuteTrigger,
		"IsTriggerAt":       e.IsTriggerAt,
		"GetCurrentTrigger": e.GetCurrentTrigger,
		"AddZone":           e.AddZone,
		"RemoveZone":        e.RemoveZone,
		"GetNumZones":       e.GetNumZones,
		"GetZoneX":          e.GetZoneX,
		"GetZoneY":          e.GetZoneY,
		"GetZoneWidth":      e.GetZoneWidth,
		"GetZoneHeight":     e.GetZoneHeight,
		"GetZoneLayer":      e.GetZoneLayer,
		"SetZoneLayer":      e.SetZoneLayer,
		"SetZoneBounds":     e.SetZoneBounds,
		"GetZoneSteps":      e.GetZoneSteps,
		"SetZoneSteps":      e.SetZoneSteps,
		"SetZoneScript":     e.SetZoneScript,
		"ExecuteZoneScript": e.ExecuteZoneScript,
		"ExecuteZones":      e.ExecuteZones,
		"AreZonesAt":        e.AreZonesAt,
		"GetCurrentZone":    e.GetCurrentZone,

		// Persons
		"CreatePerson":                 e.CreatePerson,
		"DestroyPerson":                e.DestroyPerson,
		"DoesPersonExist":              e.DoesPersonExist,
		"GetPersonList":                e.GetPersonList,
		"GetPersonX":                   e.GetPersonX,
		"GetPersonY":                   e.GetPersonY,
		"GetPersonXFloat":              e.GetPersonXFloat,
		"GetPersonYFloat":              e.GetPersonYFloat,
		"SetPersonX":                   e.SetPersonX,
		"SetPersonY":                   e.SetPersonY,
		"SetPersonXYFloat":             e.SetPersonXYFloat,
		"GetPersonLayer":               e.GetPersonLayer,
		"SetPersonLayer":               e.SetPersonLayer,
		"GetPersonDirection":           e.GetPersonDirection,
		"SetPersonDirection":           e.SetPersonDirection,
		"GetPersonFrame":               e.GetPersonFrame,
		"SetPersonFrame":               e.SetPersonFrame,
		"GetPersonFrameRevert":         e.GetPersonFrameRevert,
		"SetPersonFrameRevert":         e.SetPersonFrameRevert,
		"GetPersonSpeedX":              e.GetPersonSpeedX,
		"GetPersonSpeedY":              e.GetPersonSpeedY,
		"SetPersonSpeed":               e.SetPersonSpeed,
		"SetPersonSpeedXY":             e.SetPersonSpeedXY,
		"GetPersonOffsetX":             e.GetPersonOffsetX,
		"GetPersonOffsetY":             e.GetPersonOffsetY,
		"SetPersonOffsetX":             e.SetPersonOffsetX,
		"SetPersonOffsetY":             e.SetPersonOffsetY,
		"GetPersonMask":                e.GetPersonMask,
		"SetPersonMask":                e.SetPersonMask,
		"SetPersonScaleFactor":         e.SetPersonScaleFactor,
		"GetPersonAngle":               e.GetPersonAngle,
		"SetPersonAngle":               e.SetPersonAngle,
		"IsPersonVisible":              e.IsPersonVisible,
		"SetPersonVisible":             e.SetPersonVisible,
		"SetPersonSpriteset":           e.SetPersonSpriteset,
		"QueuePersonCommand":           e.QueuePersonCommand,
		"QueuePersonScript":            e.QueuePersonScript,
		"ClearPersonCommands":          e.ClearPersonCommands,
		"IsCommandQueueEmpty":          e.IsCommandQueueEmpty,
		"IsPersonBusy":                 e.IsPersonBusy,
		"FollowPerson":                 e.FollowPerson,
		"GetPersonLeader":              e.GetPersonLeader,
		"GetPersonFollowers":           e.GetPersonFollowers,
		"GetPersonFollowDistance":      e.GetPersonFollowDistance,
		"SetPersonFollowDistance":      e.SetPersonFollowDistance,
		"IgnorePersonObstructions":     e.IgnorePersonObstructions,
		"IsIgnoringPersonObstructions": e.IsIgnoringPersonObstructions,
		"IgnoreTileObstructions":       e.IgnoreTileObstructions,
		"IsIgnoringTileObstructions":   e.IsIgnoringTileObstructions,
		"GetPersonIgnoreList":          e.GetPersonIgnoreList,
		"SetPersonIgnoreList":          e.SetPersonIgnoreList,
		"IsPersonObstructed":           e.IsPersonObstructed,
		"GetObstructingPerson":         e.GetObstructingPerson,
		"GetObstructingTile":           e.GetObstructingTile,
		"SetPersonScript":              e.SetPersonScript,
		"CallPersonScript":             e.CallPersonScript,
		"SetDefaultPersonScript":       e.SetDefaultPersonScript,
		"CallDefaultPersonScript":      e.CallDefaultPersonScript,
		"GetCurrentPerson":             e.GetCurrentPerson,
		"GetActingPerson":              e.GetActingPerson,
		"GetPersonValue":               e.GetPersonValue,
		"SetPersonValue":               e.SetPersonValue,
	}

	syms := make(map[string]reflect.Value, len(funcs)+32)
	for name, fn := range funcs {
		syms[name] = throwing(fn)
	}
	syms["Color"] = reflect.ValueOf((*core.Color)(nil))

	consts := map[string]int{
		"CommandWait":            CommandWait,
		"CommandAnimate":         CommandAnimate,
		"CommandFaceNorth":       CommandFaceNorth,
		"CommandFaceNortheast":   CommandFaceNorth + int(Northeast),
		"CommandFaceEast":        CommandFaceNorth + int(East),
		"CommandFaceSoutheast":   CommandFaceNorth + int(Southeast),
		"CommandFaceSouth":       CommandFaceNorth + int(South),
		"CommandFaceSouthwest":   CommandFaceNorth + int(Southwest),
		"CommandFaceWest":        CommandFaceNorth + int(West),
		"CommandFaceNorthwest":   CommandFaceNorthwest,
		"CommandMoveNorth":       CommandMoveNorth,
		"CommandMoveEast":        CommandMoveEast,
		"CommandMoveSouth":       CommandMoveSouth,
		"CommandMoveWest":        CommandMoveWest,
		"ScriptOnCreate":         OnCreate,
		"ScriptOnDestroy":        OnDestroy,
		"ScriptOnActivateTouch":  OnTouch,
		"ScriptOnActivateTalk":   OnTalk,
		"ScriptCommandGenerator": Generator,
		"ScriptOnEnterMap":       OnEnter,
		"ScriptOnLeaveMap":       OnLeave,
		"ScriptOnLeaveMapNorth":  OnLeaveNorth,
		"ScriptOnLeaveMapEast":   OnLeaveEast,
		"ScriptOnLeaveMapSouth":  OnLeaveSouth,
		"ScriptOnLeaveMapWest":   OnLeaveWest,
		"MaxPlayers":             MaxPlayers,
	}
	for name, v := range consts {
		syms[name] = intConst(v)
	}
	return syms
}
