package bridge

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/huetils/sundial/internal/policy"
)

// lowestBri is the dimmest step the v1 API can address; the bridge
// clamps anything below it anyway.
const lowestBri uint8 = 1

// Actuator applies a lighting plan to the bridge, one light at a time,
// skipping writes that would not change anything.
type Actuator struct {
	client  Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewActuator creates an actuator that paces its writes at rps requests
// per second.
func NewActuator(client Client, rps float64, logger zerolog.Logger) *Actuator {
	if rps <= 0 {
		rps = 10
	}
	return &Actuator{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Apply walks the plan's targets and issues the necessary writes. The
// first write failure aborts; the next scheduled run will converge.
func (a *Actuator) Apply(ctx context.Context, plan policy.Plan) error {
	for _, t := range plan.Targets {
		var err error
		switch t.Action {
		case policy.ActionPowerOff:
			err = a.powerOff(ctx, t.Light, plan)
		case policy.ActionPowerOn:
			err = a.powerOn(ctx, t.Light, t.Brightness, plan)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// powerOff dims a light down over the plan's transition, cutting power
// outright once it reaches the lowest step.
func (a *Actuator) powerOff(ctx context.Context, light policy.LightState, plan policy.Plan) error {
	log := a.logger.With().Str("light", light.Name).Logger()

	if !light.On {
		log.Debug().Msg("Light already off, skipping")
		return nil
	}

	if light.Brightness <= lowestBri {
		log.Info().Msg("Light at lowest brightness, powering off")
		return a.write(ctx, light.ID, Change{On: false})
	}

	log.Info().Uint8("bri", light.Brightness).Msg("Dimming light down")
	bri := lowestBri
	return a.write(ctx, light.ID, Change{On: true, Brightness: &bri, Transition: plan.Transition})
}

// powerOn brings a light to the target brightness and the plan's color
// temperature. An off light is first powered on at the lowest step so
// the ramp starts from dark instead of the last remembered level.
func (a *Actuator) powerOn(ctx context.Context, light policy.LightState, target uint8, plan policy.Plan) error {
	log := a.logger.With().Str("light", light.Name).Logger()

	if target < lowestBri {
		target = lowestBri
	}

	if light.On && light.Brightness == target && light.ColorTemp == plan.ColorTemp {
		log.Debug().Msg("Light already at target, skipping")
		return nil
	}

	if !light.On {
		log.Info().Uint8("target", target).Msg("Light off, powering on at lowest brightness")
		bri := lowestBri
		if err := a.write(ctx, light.ID, Change{On: true, Brightness: &bri}); err != nil {
			return err
		}
	} else {
		log.Info().Uint8("bri", light.Brightness).Uint8("target", target).Msg("Ramping light to target")
	}

	ct := plan.ColorTemp
	return a.write(ctx, light.ID, Change{On: true, Brightness: &target, ColorTemp: &ct, Transition: plan.Transition})
}

func (a *Actuator) write(ctx context.Context, id int, change Change) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	return a.client.SetLight(ctx, id, change)
}
