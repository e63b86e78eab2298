package chat

// User-facing copy. The site is Spanish-only.
const (
	ErrorPrefix         = "Lo siento, ha ocurrido un error. "
	ConnectivityAdvice  = "Por favor, verifica tu conexión a internet y inténtalo de nuevo."
	RetryLaterAdvice    = "Inténtalo de nuevo en unos momentos."
	UnknownErrorMessage = "Error desconocido"
	TypingLabel         = "Escribiendo"
	WelcomeMessage      = "¡Hola! 👋 Soy tu asistente virtual especializado en automatización empresarial. ¿En qué puedo ayudarte a optimizar tu negocio?"
)

// ConnectivityFailureText is shown when the request never reached the chat service.
const ConnectivityFailureText = ErrorPrefix + ConnectivityAdvice

// GenericFailureText is shown for any other failed exchange.
const GenericFailureText = ErrorPrefix + RetryLaterAdvice
