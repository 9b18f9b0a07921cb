package i18n

var esESCatalog = NewCatalog("es-ES", map[Code]string{
	CodeUnknown: "Algo salió mal. Inténtalo de nuevo.",

	// Identity errors
	CodeAuthInvalidCredentials: "Correo electrónico o contraseña incorrectos",
	CodeAuthEmailInvalid:       "Introduce un correo electrónico válido",
	CodeAuthEmailTaken:         "Ya existe una cuenta con este correo electrónico",
	CodeAuthPasswordTooShort:   "La contraseña debe tener al menos {{.MinLength}} caracteres",
	CodeAuthPasswordMismatch:   "La contraseña actual no es correcta",
	CodeAuthUserDisabled:       "Esta cuenta está deshabilitada",
	CodeAuthSessionExpired:     "Tu sesión ha expirado. Inicia sesión de nuevo",
	CodeAuthResetTokenInvalid:  "El enlace de restablecimiento no es válido",
	CodeAuthResetTokenExpired:  "El enlace de restablecimiento ha expirado",
	CodeAuthResetTokenUsed:     "Este enlace de restablecimiento ya se ha utilizado",
	CodeAuthPasskeyInvalid:     "No se pudo verificar la llave de acceso",

	// Employee errors
	CodeEmployeeNameEmpty:    "El nombre del empleado no puede estar vacío",
	CodeEmployeeEmailInvalid: "El correo electrónico del empleado no es válido",
	CodeEmployeeEmailTaken:   "Ya existe un empleado con este correo electrónico",
	CodeEmployeeRateNegative: "La tarifa por hora no puede ser negativa",
	CodeEmployeeInactive:     "Este empleado está inactivo",

	// Schedule errors
	CodeScheduleInvalidRange:      "Un turno debe terminar después de su inicio",
	CodeScheduleInvalidTransition: "No se puede cambiar el turno de {{.FromStatus}} a {{.ToStatus}}",
	CodeScheduleEmployeeRequired:  "El turno necesita un empleado asignado",

	// Timeclock errors
	CodeTimeclockAlreadyOn:     "Ya has fichado la entrada",
	CodeTimeclockNotOn:         "No has fichado la entrada",
	CodeTimeclockAlreadyPaused: "El turno ya está en pausa",
	CodeTimeclockNotPaused:     "El turno no está en pausa",

	// Task errors
	CodeTaskTitleEmpty:        "El título de la tarea no puede estar vacío",
	CodeTaskInvalidTransition: "No se puede cambiar la tarea de {{.FromStatus}} a {{.ToStatus}}",

	// Request errors
	CodeRequestInvalidKind:       "Tipo de solicitud no válido",
	CodeRequestInvalidRange:      "Una solicitud debe terminar después de su inicio",
	CodeRequestInvalidTransition: "No se puede cambiar la solicitud de {{.FromStatus}} a {{.ToStatus}}",

	// List filter errors
	CodeFilterInvalid: "El filtro de la lista no es válido",

	// Storage errors
	CodeNotFound: "No se encontró el recurso solicitado",
})
