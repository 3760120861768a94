package identity

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

type ControllerRoutes struct {
	Register string
	Activate string
	Login    string
	Me       string
	Logout   string
	Users    string
}

// Controller exposes the operation surface as a JSON API:
// register, activateUser, login, getLoggedInUser, logoutUser, getUsers.
type Controller struct {
	Logger    Logger
	Routes    *ControllerRoutes
	Registrar *RegisterUserHandler
	Activator *ActivateUserHandler
	Sessions  *SessionIssuer
	Directory Directory
}

type ControllerOption func(*Controller) *Controller

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
		Routes: &ControllerRoutes{
			Register: "/register",
			Activate: "/activate",
			Login:    "/login",
			Me:       "/me",
			Logout:   "/logout",
			Users:    "/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Registrar == nil || c.Activator == nil || c.Sessions == nil || c.Directory == nil {
		panic("Missing handlers in identity controller...")
	}

	return c
}

func WithHandlers(registrar *RegisterUserHandler, activator *ActivateUserHandler, sessions *SessionIssuer, directory Directory) ControllerOption {
	return func(c *Controller) *Controller {
		c.Registrar = registrar
		c.Activator = activator
		c.Sessions = sessions
		c.Directory = directory
		return c
	}
}

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

// RegisterRoutes mounts the operation surface. The gate middleware guards
// only the protected operations.
func RegisterRoutes(app fiber.Router, controller *Controller, gate fiber.Handler) {
	app.Post(controller.Routes.Register, controller.RegisterPost)
	app.Post(controller.Routes.Activate, controller.ActivatePost)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Get(controller.Routes.Me, gate, controller.MeGet)
	app.Post(controller.Routes.Logout, gate, controller.LogoutPost)
	app.Get(controller.Routes.Users, controller.UsersGet)
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone_number"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
		validation.Field(&r.Email, validation.Required.Error("Email is required"), is.Email),
		validation.Field(&r.Password, validation.Required.Error("Password is required"), validation.Length(8, 100)),
		validation.Field(&r.Phone, validation.Required.Error("Phone Number is required")),
	)
}

func (a *Controller) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var res *RegisterUserResponse
	req := RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
		OnResponse: func(resp *RegisterUserResponse) {
			res = resp
		},
	}

	if err := a.Registrar.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("register user error: %v", err)
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"activation_token": res.ActivationToken,
	})
}

// ActivatePayload is the activation body
type ActivatePayload struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

// Validate will run validation rules
func (r ActivatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ActivationToken, validation.Required.Error("Activation Token is required")),
		validation.Field(&r.ActivationCode, validation.Required.Error("Activation Code is required")),
	)
}

func (a *Controller) ActivatePost(c *fiber.Ctx) error {
	payload := new(ActivatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("activate parse payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("activate validate payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var res *ActivateUserResponse
	req := ActivateUserMessage{
		ActivationToken: payload.ActivationToken,
		ActivationCode:  payload.ActivationCode,
		OnResponse: func(resp *ActivateUserResponse) {
			res = resp
		},
	}

	if err := a.Activator.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("activate user error: %v", err)
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": res.User,
	})
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("Email is required"), is.Email),
		validation.Field(&r.Password, validation.Required.Error("Password is required")),
	)
}

func (a *Controller) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := a.Sessions.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login error: %v", err)
		return a.renderError(c, err)
	}

	// credential failures ride in the result body with a uniform message
	return c.JSON(result)
}

func (a *Controller) MeGet(c *fiber.Ctx) error {
	session, err := GetSession(c)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(session)
}

func (a *Controller) LogoutPost(c *fiber.Ctx) error {
	ClearRequestSession(c)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully!",
	})
}

func (a *Controller) UsersGet(c *fiber.Ctx) error {
	records, err := a.Directory.List(c.UserContext())
	if err != nil {
		a.Logger.Error("list users error: %v", err)
		return a.renderError(c, err)
	}

	return c.JSON(records)
}

func (a *Controller) renderError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		switch richErr.Category {
		case errors.CategoryValidation, errors.CategoryBadInput:
			status = fiber.StatusBadRequest
		case errors.CategoryConflict:
			status = fiber.StatusConflict
		case errors.CategoryAuth, errors.CategoryAuthz:
			status = fiber.StatusUnauthorized
		default:
			status = fiber.StatusInternalServerError
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}
