package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// IdempotencyHeader cabecera que identifica un intento lógico de una petición POST.
const IdempotencyHeader = "Idempotency-Key"

const tracerName = "github.com/jhoicas/erp-api/internal/interfaces/http"

// httpObserver lo implementa *telemetry.Metrics.
type httpObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// routeOf patrón de la ruta (/api/invoices/:id) para no disparar la cardinalidad de etiquetas.
func routeOf(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return "unmatched"
}

// statusOf estado final, incluido el que pondrá el ErrorHandler si el handler devolvió error.
func statusOf(c *fiber.Ctx, err error) int {
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
	return c.Response().StatusCode()
}

// RequestLogger registra método, ruta, estado, latencia y empresa de cada petición.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.SetUserContext(log.WithContext(c.UserContext()))
		err := c.Next()
		status := statusOf(c, err)
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error().Err(err)
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("company_id", GetCompanyID(c)).
			Msg("http")
		return err
	}
}

// Metrics observa la duración de cada petición por método, ruta y estado.
func Metrics(m httpObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		m.ObserveHTTP(c.Method(), routeOf(c), statusOf(c, err), time.Since(start))
		return err
	}
}

// fasthttpCarrier adapta las cabeceras de la petición al propagador de otel.
type fasthttpCarrier struct{ c *fiber.Ctx }

func (h fasthttpCarrier) Get(key string) string { return h.c.Get(key) }
func (h fasthttpCarrier) Set(key, value string) { h.c.Set(key, value) }
func (h fasthttpCarrier) Keys() []string {
	var keys []string
	h.c.Request().Header.VisitAll(func(k, _ []byte) { keys = append(keys, string(k)) })
	return keys
}

// Tracing abre un span por petición y lo deja en c.UserContext() para los casos de uso.
func Tracing() fiber.Handler {
	prop := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	return func(c *fiber.Ctx) error {
		ctx := prop.Extract(c.UserContext(), fasthttpCarrier{c})
		ctx, span := otel.Tracer(tracerName).Start(ctx, c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		status := statusOf(c, err)
		span.SetName(c.Method() + " " + routeOf(c))
		span.SetAttributes(
			attribute.String("http.route", routeOf(c)),
			attribute.Int("http.status_code", status),
			attribute.String("company_id", GetCompanyID(c)),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, fiber.ErrInternalServerError.Message)
		}
		return err
	}
}

// Idempotency repite la respuesta guardada para una Idempotency-Key ya procesada por la empresa.
// Una llave en proceso responde 409; si la petición falla la reserva se libera para reintentar.
// Solo se guardan respuestas 2xx.
func Idempotency(store ports.IdempotencyStore, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hdr := c.Get(IdempotencyHeader)
		if hdr == "" {
			return c.Next()
		}
		if len(hdr) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: IdempotencyHeader + " demasiado larga"})
		}
		ctx := c.UserContext()
		key := GetCompanyID(c) + ":" + c.Method() + ":" + c.Path() + ":" + hdr

		reserved, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			return respondError(c, err)
		}
		if !reserved {
			stored, err := store.Get(ctx, key)
			switch {
			case errors.Is(err, ports.ErrKeyInFlight):
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_FLIGHT", Message: "la petición con esta llave sigue en proceso"})
			case err != nil:
				return respondError(c, err)
			case stored == nil:
				// venció entre Reserve y Get
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_FLIGHT", Message: "reintente la petición"})
			}
			c.Set("Idempotent-Replayed", "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		err = c.Next()
		status := statusOf(c, err)
		if err != nil || status < 200 || status >= 300 {
			if rerr := store.Release(ctx, key); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		}
		resp := ports.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		return store.Save(ctx, key, resp, ttl)
	}
}
